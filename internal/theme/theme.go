package theme

import "github.com/charmbracelet/lipgloss"

type MethodColors struct {
	GET     lipgloss.Color
	POST    lipgloss.Color
	PUT     lipgloss.Color
	PATCH   lipgloss.Color
	DELETE  lipgloss.Color
	HEAD    lipgloss.Color
	OPTIONS lipgloss.Color
	Default lipgloss.Color
}

// PhaseColors paint the waterfall boxes, one per timing phase.
type PhaseColors struct {
	Blocked lipgloss.Color
	DNS     lipgloss.Color
	Connect lipgloss.Color
	Send    lipgloss.Color
	Wait    lipgloss.Color
	Receive lipgloss.Color
}

type Theme struct {
	AppFrame        lipgloss.Style
	Header          lipgloss.Style
	HeaderBrand     lipgloss.Style
	HeaderTitle     lipgloss.Style
	HeaderValue     lipgloss.Style
	ColumnHeader    lipgloss.Style
	ColumnSorted    lipgloss.Style
	Division        lipgloss.Style
	Row             lipgloss.Style
	RowSelected     lipgloss.Style
	RowCustom       lipgloss.Style
	RowMeta         lipgloss.Style
	FilterButton    lipgloss.Style
	FilterActive    lipgloss.Style
	FilterCursor    lipgloss.Style
	FreetextPrompt  lipgloss.Style
	StatusBar       lipgloss.Style
	StatusBarKey    lipgloss.Style
	StatusBarValue  lipgloss.Style
	DetailsBorder   lipgloss.Style
	DetailsTitle    lipgloss.Style
	DetailsKey      lipgloss.Style
	DetailsValue    lipgloss.Style
	Notification    lipgloss.Style
	Error           lipgloss.Style
	Success         lipgloss.Style
	MarkerDOM       lipgloss.Style
	MarkerLoad      lipgloss.Style
	MethodColors    MethodColors
	PhaseColors     PhaseColors
	StatusOK        lipgloss.Color
	StatusRedirect  lipgloss.Color
	StatusClientErr lipgloss.Color
	StatusServerErr lipgloss.Color
	HighlightStyle  string
}

func DefaultTheme() Theme {
	accent := lipgloss.Color("#7D56F4")
	base := lipgloss.NewStyle().Foreground(lipgloss.Color("#dcd7ff"))

	return Theme{
		AppFrame: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#403B59")),
		Header: lipgloss.NewStyle().Foreground(lipgloss.Color("#E5E1FF")).Padding(0, 1),
		HeaderBrand: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1A1020")).
			Background(lipgloss.Color("#FBC859")).
			Bold(true).
			Padding(0, 1),
		HeaderTitle:  lipgloss.NewStyle().Foreground(accent).Bold(true),
		HeaderValue:  lipgloss.NewStyle().Foreground(lipgloss.Color("#D1CFF6")),
		ColumnHeader: lipgloss.NewStyle().Foreground(lipgloss.Color("#A6A1BB")).Bold(true),
		ColumnSorted: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD46A")).Bold(true),
		Division:     lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6A86")),
		Row:          base,
		RowSelected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#0F111A")).
			Background(lipgloss.Color("#FFD46A")).
			Bold(true),
		RowCustom: lipgloss.NewStyle().Foreground(lipgloss.Color("#56A9DD")).Italic(true),
		RowMeta:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6A86")),
		FilterButton: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5E5A72")).
			Padding(0, 1),
		FilterActive: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FDFBFF")).
			Background(accent).
			Bold(true).
			Padding(0, 1),
		FilterCursor:   lipgloss.NewStyle().Underline(true),
		FreetextPrompt: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8B39")).Bold(true),
		StatusBar:      lipgloss.NewStyle().Foreground(lipgloss.Color("#A6A1BB")).Padding(0, 1),
		StatusBarKey:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8B39")).Bold(true),
		StatusBarValue: lipgloss.NewStyle().Foreground(lipgloss.Color("#EAEAEA")),
		DetailsBorder: base.BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5FB3B3")),
		DetailsTitle: lipgloss.NewStyle().Foreground(accent).Bold(true),
		DetailsKey:   lipgloss.NewStyle().Foreground(lipgloss.Color("#A78BFA")),
		DetailsValue: lipgloss.NewStyle().Foreground(lipgloss.Color("#E6E1FF")),
		Notification: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E0DEF4")).
			Background(lipgloss.Color("#433C59")).
			Padding(0, 1),
		Error:      lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6E6E")),
		Success:    lipgloss.NewStyle().Foreground(lipgloss.Color("#6EF17E")),
		MarkerDOM:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F")),
		MarkerLoad: lipgloss.NewStyle().Foreground(lipgloss.Color("#5F87FF")),
		MethodColors: MethodColors{
			GET:     lipgloss.Color("#34d399"),
			POST:    lipgloss.Color("#60a5fa"),
			PUT:     lipgloss.Color("#f59e0b"),
			PATCH:   lipgloss.Color("#14b8a6"),
			DELETE:  lipgloss.Color("#f87171"),
			HEAD:    lipgloss.Color("#a1a1aa"),
			OPTIONS: lipgloss.Color("#c084fc"),
			Default: lipgloss.Color("#e5e7eb"),
		},
		PhaseColors: PhaseColors{
			Blocked: lipgloss.Color("#6E6A86"),
			DNS:     lipgloss.Color("#5FB3B3"),
			Connect: lipgloss.Color("#FF8B39"),
			Send:    lipgloss.Color("#A78BFA"),
			Wait:    lipgloss.Color("#9CD6FF"),
			Receive: lipgloss.Color("#6EF17E"),
		},
		StatusOK:        lipgloss.Color("#6EF17E"),
		StatusRedirect:  lipgloss.Color("#9CD6FF"),
		StatusClientErr: lipgloss.Color("#FFD46A"),
		StatusServerErr: lipgloss.Color("#FF6E6E"),
		HighlightStyle:  "monokai",
	}
}

// Method returns the color for an HTTP method.
func (c MethodColors) Method(method string) lipgloss.Color {
	switch method {
	case "GET":
		return c.GET
	case "POST":
		return c.POST
	case "PUT":
		return c.PUT
	case "PATCH":
		return c.PATCH
	case "DELETE":
		return c.DELETE
	case "HEAD":
		return c.HEAD
	case "OPTIONS":
		return c.OPTIONS
	default:
		return c.Default
	}
}
