package views

import (
	"basebridge/internal/domain/entity"

	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

// LandingModel is everything the session view needs for one render.
type LandingModel struct {
	State        entity.SessionState
	NetworkName  string
	NativeSymbol string
	FiatCurrency string
}

func (m LandingModel) crypto() bool {
	return m.State.TransferMode != entity.TransferModeFiat
}

// transferUnit is the unit of amounts typed into the Transfer and Convert dialogs.
func (m LandingModel) transferUnit() string {
	if m.crypto() {
		return m.NativeSymbol
	}
	return m.FiatCurrency
}

func (m LandingModel) convertedUnit() string {
	if m.crypto() {
		return m.FiatCurrency
	}
	return m.NativeSymbol
}

// Landing renders the sign-in card or the dashboard.
func Landing(m LandingModel) g.Node {
	if !m.State.LoggedIn {
		return Page("Basebridge", signInCard(m))
	}
	return Page("Basebridge", dashboard(m))
}

func signInCard(m LandingModel) g.Node {
	return h.Div(
		h.Class(backgroundClass+" flex items-center justify-center"),
		h.Div(
			h.Class("w-[350px] rounded-xl bg-white p-6 shadow-xl text-center"),
			h.H2(h.Class("text-2xl font-bold mb-4"), g.Text("Basebridge")),
			banners(m.State),
			postForm("/landing/signin",
				h.Button(h.Type("submit"), h.Class("w-full rounded bg-blue-500 hover:bg-blue-600 px-4 py-2 text-white"), g.Text("Sign in with Google")),
			),
		),
	)
}

func dashboard(m LandingModel) g.Node {
	return h.Div(
		h.Class(backgroundClass+" p-4"),
		h.Div(
			h.Class("max-w-md mx-auto"),
			userHeader(m),
			banners(m.State),
			h.Div(
				h.Class("grid grid-cols-2 gap-4 mb-6"),
				cryptoCard(m),
				fiatCard(m),
			),
			modeSelector(m),
			h.Div(
				h.Class("grid grid-cols-2 gap-4"),
				transferDialog(m),
				convertDialog(m),
				historyDialog(),
				settingsDialog(m),
			),
		),
	)
}

func userHeader(m LandingModel) g.Node {
	s := m.State
	return h.Header(
		h.Class("flex justify-between items-center mb-6"),
		h.Div(
			h.Class("flex items-center space-x-2"),
			h.Img(
				h.Src(s.UserAvatar),
				h.Alt(s.UserName),
				h.Title(s.Initial()),
				h.Class("h-10 w-10 rounded-full bg-blue-200"),
			),
			h.Div(
				h.H2(h.ID("user-name"), h.Class("font-semibold text-white"), g.Text(s.UserName)),
				h.P(h.ID("network-name"), h.Class("text-sm text-blue-200"), g.Text(m.NetworkName)),
			),
		),
		postForm("/landing/logout",
			h.Button(h.Type("submit"), h.Class("text-white"), h.Title("Log out"), g.Text("Log out")),
		),
	)
}

func banners(s entity.SessionState) g.Node {
	return g.Group{
		g.If(s.ErrorMessage != "",
			h.Div(h.ID("error-message"), g.Attr("role", "alert"), h.Class("mb-4 flex items-start justify-between gap-2 rounded bg-red-100 p-3 text-red-700"),
				h.Span(g.Text(s.ErrorMessage)),
				postForm("/landing/dismiss",
					h.Button(h.Type("submit"), h.ID("dismiss-messages"), h.Class("text-sm underline"), g.Text("Dismiss")),
				),
			),
		),
		g.If(s.Notice != "",
			h.Div(h.ID("notice"), g.Attr("role", "status"), h.Class("mb-4 rounded bg-green-100 p-3 text-green-800"), g.Text(s.Notice)),
		),
	}
}

func cryptoCard(m LandingModel) g.Node {
	s := m.State
	var body g.Node
	if s.WalletConnected {
		body = g.Group{
			h.P(h.ID("wallet-address"), h.Class("text-sm mb-1"), h.Title(s.WalletAddress), g.Text(s.ShortAddress())),
			h.P(h.ID("eth-balance"), h.Class("text-2xl font-bold"), g.Textf("%s %s", s.EthBalance, m.NativeSymbol)),
		}
	} else {
		body = postForm("/landing/wallet/connect",
			h.Button(h.Type("submit"), h.Class("w-full mt-2 rounded bg-blue-500 hover:bg-blue-600 px-3 py-2"), g.Text("Connect Wallet")),
		)
	}
	return h.Div(
		h.Class("rounded-xl bg-blue-700 text-white p-4"),
		h.H3(h.Class("text-lg font-semibold mb-1"), g.Text("Crypto Wallet")),
		body,
	)
}

func fiatCard(m LandingModel) g.Node {
	return h.Div(
		h.Class("rounded-xl bg-green-600 text-white p-4"),
		h.H3(h.Class("text-lg font-semibold mb-1"), g.Text("Fiat Account")),
		h.P(h.ID("fiat-balance"), h.Class("text-2xl font-bold"), g.Textf("%s %s", m.State.FiatBalance, m.FiatCurrency)),
	)
}

func modeSelector(m LandingModel) g.Node {
	button := func(mode entity.TransferMode, label, active string) g.Node {
		class := "rounded border px-4 py-2 bg-white text-black"
		if m.State.TransferMode == mode {
			class = "rounded px-4 py-2 text-white " + active
		}
		return h.Button(h.Type("submit"), h.Name("mode"), h.Value(string(mode)), h.Class(class), g.Text(label))
	}
	return postForm("/landing/mode",
		h.Class("flex justify-around mb-6"),
		button(entity.TransferModeCrypto, "Crypto", "bg-blue-500"),
		button(entity.TransferModeFiat, "Fiat", "bg-green-500"),
	)
}

func transferDialog(m LandingModel) g.Node {
	title, recipientHint := "Transfer Fiat", "Account number"
	if m.crypto() {
		title, recipientHint = "Transfer Crypto", "0x..."
	}
	return dialog("transfer-dialog", "Transfer", title, "Send "+m.transferUnit()+" to another address.",
		postForm("/landing/transfer",
			h.Class("space-y-4 py-4"),
			field("recipient", "Recipient Address",
				h.Input(h.ID("recipient"), h.Name("recipient"), h.Placeholder(recipientHint), h.Required(), inputClass()),
			),
			field("amount", "Amount ("+m.transferUnit()+")",
				h.Input(h.ID("amount"), h.Name("amount"), h.Type("number"), h.Step("any"), h.Min("0"), h.Required(), inputClass()),
			),
			submit("Send "+title[len("Transfer "):]),
		),
	)
}

func convertDialog(m LandingModel) g.Node {
	amount, converted := "", ""
	if conv := m.State.Conversion; conv != nil && conv.Mode == m.State.TransferMode {
		amount, converted = conv.Amount, conv.Converted
	}
	return dialog("convert-dialog", "Convert", "Convert "+m.transferUnit()+" to "+m.convertedUnit(), "Check the current conversion rate.",
		postForm("/landing/convert",
			h.Class("space-y-4 py-4"),
			field("convert-amount", m.transferUnit()+" Amount",
				h.Input(h.ID("convert-amount"), h.Name("amount"), h.Type("number"), h.Step("any"), h.Min("0"), h.Value(amount), inputClass()),
			),
			field("converted-amount", m.convertedUnit()+" Amount",
				h.Input(h.ID("converted-amount"), h.ReadOnly(), h.Value(converted), inputClass()),
			),
			submit("Calculate"),
		),
	)
}

func historyDialog() g.Node {
	return dialog("history-dialog", "History", "Transaction History", "Review your past transactions.",
		h.Div(h.Class("space-y-4 py-4"), h.P(g.Text("Transaction history will be displayed here."))),
	)
}

func settingsDialog(m LandingModel) g.Node {
	return dialog("settings-dialog", "Settings", "Settings", "Manage your account and preferences.",
		postForm("/landing/settings",
			h.Class("space-y-4 py-4"),
			field("username", "Username",
				h.Input(h.ID("username"), h.Name("userName"), h.Value(m.State.UserName), h.MaxLength("32"), h.Required(), inputClass()),
			),
			submit("Save Settings"),
		),
	)
}

// dialog renders a disclosure whose summary is the dashboard tile.
func dialog(id, tile, title, description string, content g.Node) g.Node {
	return g.El("details",
		h.ID(id),
		h.Class("rounded-xl bg-blue-500 text-white"),
		g.El("summary",
			h.Class("h-24 flex items-center justify-center cursor-pointer font-semibold"),
			g.Text(tile),
		),
		h.Div(
			h.Class("rounded-b-xl bg-white p-4 text-black"),
			h.H3(h.Class("text-lg font-semibold"), g.Text(title)),
			h.P(h.Class("text-sm text-gray-500"), g.Text(description)),
			content,
		),
	)
}

func postForm(action string, children ...g.Node) g.Node {
	return h.Form(h.Method("post"), h.Action(action), g.Group(children))
}

func field(id, label string, input g.Node) g.Node {
	return h.Div(
		h.Class("space-y-2"),
		h.Label(h.For(id), h.Class("block text-sm font-medium"), g.Text(label)),
		input,
	)
}

func submit(label string) g.Node {
	return h.Button(h.Type("submit"), h.Class("w-full rounded bg-blue-600 px-4 py-2 text-white"), g.Text(label))
}

func inputClass() g.Node {
	return h.Class("w-full rounded border px-3 py-2")
}
