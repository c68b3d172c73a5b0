package tui

import (
	"time"

	"evmwallet/pkg/models"
	"evmwallet/pkg/wallet"
	"evmwallet/pkg/watcher"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Version is set by Start()
var Version = "dev"

const nativeSymbol = wallet.NativeSymbol

// maxHistory bounds the balance sparkline.
const maxHistory = 120

type screen int

const (
	screenMain screen = iota
	screenHistory
	screenLookup
	screenSend
	screenAddAccount
	screenAddToken
	screenNetwork
	screenConfirmDelete
	screenHelp
)

// --- Messages ---

type clearStatusMsg struct{}

type lookupResultMsg struct {
	res models.LookupResult
	err error
}

type sendResultMsg struct {
	rec models.TransactionRecord
	err error
}

type opResultMsg struct {
	status string
	err    error
}

// --- Model ---

type model struct {
	wallet  *wallet.Wallet
	watcher *watcher.Watcher
	sub     watcher.Subscriber

	state      models.WalletModel
	report     *models.BalanceReport
	refreshErr error
	history    []float64
	historySel models.Selection

	screen        screen
	width         int
	height        int
	loading       bool
	busy          bool
	lastUpdate    time.Time
	spinner       spinner.Model
	statusMessage string
	privacyMode   bool
	decimals      int
	txFilter      string // "all", "in", "out"
	txListIdx     int

	lookupInput   textinput.Model
	lookupResult  *models.LookupResult
	lookupErr     error
	sendInputs    []textinput.Model
	sendFocus     int
	accountInputs []textinput.Model
	accountFocus  int
	tokenInput    textinput.Model
	networkIdx    int
}

func initialModel(wl *wallet.Wallet, w *watcher.Watcher, decimals int) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	lookup := textinput.New()
	lookup.Placeholder = "0x address or transaction hash"
	lookup.Width = 70

	sis := make([]textinput.Model, 3)
	for i := range sis {
		sis[i] = textinput.New()
		sis[i].Width = 50
	}
	sis[0].Placeholder = "Recipient (0x...)"
	sis[1].Placeholder = "Amount (e.g. 0.5)"
	sis[2].Placeholder = "Asset: native or token symbol"

	ais := make([]textinput.Model, 2)
	for i := range ais {
		ais[i] = textinput.New()
		ais[i].Width = 70
	}
	ais[0].Placeholder = "Name (optional)"
	ais[1].Placeholder = "Private key (hex)"
	ais[1].EchoMode = textinput.EchoPassword
	ais[1].EchoCharacter = '•'

	token := textinput.New()
	token.Placeholder = "Token contract address (0x...)"
	token.Width = 50

	if decimals <= 0 {
		decimals = 4
	}

	return model{
		wallet:        wl,
		watcher:       w,
		sub:           w.Subscribe(),
		state:         wl.State(),
		loading:       true,
		spinner:       s,
		decimals:      decimals,
		txFilter:      "all",
		lookupInput:   lookup,
		sendInputs:    sis,
		accountInputs: ais,
		tokenInput:    token,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		listenForWatcher(m.sub),
		m.spinner.Tick,
	)
}
