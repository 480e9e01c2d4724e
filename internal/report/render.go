package report

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/mrz1836/conform/internal/constants"
	"github.com/mrz1836/conform/internal/domain"
)

// DefaultWidth is the line width used when the output is not a terminal.
const DefaultWidth = 100

//nolint:gochecknoglobals // Semantic colors shared by all renderers
var (
	colorSuccess = lipgloss.AdaptiveColor{Light: "#008700", Dark: "#00FF87"}
	colorError   = lipgloss.AdaptiveColor{Light: "#AF0000", Dark: "#FF5F5F"}
	colorWarning = lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD700"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#585858", Dark: "#6C6C6C"}
)

// Styles holds the lipgloss styles used by the renderer.
type Styles struct {
	Title    lipgloss.Style
	Pass     lipgloss.Style
	Fail     lipgloss.Style
	Warn     lipgloss.Style
	Dim      lipgloss.Style
	Severity map[constants.Severity]lipgloss.Style
}

// NewStyles returns colored styles, or unstyled ones when color is false.
func NewStyles(color bool) *Styles {
	if !color {
		plain := lipgloss.NewStyle()
		return &Styles{
			Title: plain, Pass: plain, Fail: plain, Warn: plain, Dim: plain,
			Severity: map[constants.Severity]lipgloss.Style{},
		}
	}
	return &Styles{
		Title: lipgloss.NewStyle().Bold(true),
		Pass:  lipgloss.NewStyle().Foreground(colorSuccess).Bold(true),
		Fail:  lipgloss.NewStyle().Foreground(colorError).Bold(true),
		Warn:  lipgloss.NewStyle().Foreground(colorWarning),
		Dim:   lipgloss.NewStyle().Foreground(colorMuted),
		Severity: map[constants.Severity]lipgloss.Style{
			constants.SeverityLow:      lipgloss.NewStyle().Foreground(colorMuted),
			constants.SeverityMedium:   lipgloss.NewStyle().Foreground(colorWarning),
			constants.SeverityHigh:     lipgloss.NewStyle().Foreground(colorError),
			constants.SeverityCritical: lipgloss.NewStyle().Foreground(colorError).Bold(true),
		},
	}
}

// HasColorSupport reports whether w is a terminal and color is not disabled
// through NO_COLOR (any value) or TERM=dumb.
func HasColorSupport(w io.Writer) bool {
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // Fd fits in int on supported platforms
}

// CheckNoColor downgrades lipgloss to plain ASCII output when w has no color support.
func CheckNoColor(w io.Writer) {
	if !HasColorSupport(w) {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// TerminalWidth returns the width of w when it is a terminal and DefaultWidth otherwise.
func TerminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 { //nolint:gosec // Fd fits in int on supported platforms
			return width
		}
	}
	return DefaultWidth
}

// Renderer writes human-readable report summaries.
type Renderer struct {
	w      io.Writer
	styles *Styles
	width  int
}

// NewRenderer creates a renderer writing to w. Lines longer than width
// columns are truncated; width <= 0 uses DefaultWidth.
func NewRenderer(w io.Writer, styles *Styles, width int) *Renderer {
	if styles == nil {
		styles = NewStyles(false)
	}
	if width <= 0 {
		width = DefaultWidth
	}
	return &Renderer{w: w, styles: styles, width: width}
}

// Document renders whichever report doc holds.
func (r *Renderer) Document(doc *Document) error {
	if doc.Run != nil {
		return r.Run(doc.Run)
	}
	return r.Scenario(doc.Scenario, "")
}

// Run renders a run report followed by each scenario.
func (r *Renderer) Run(run *domain.RunReport) error {
	var b strings.Builder
	r.line(&b, "", "%s %s  %s", r.styles.Title.Render("Run"), run.RunID, r.verdict(run.Successful))
	r.line(&b, "  ", "Started: %s", run.StartTime.UTC().Format(time.RFC3339))
	if run.EndTime != nil {
		r.line(&b, "  ", "Duration: %s", run.EndTime.Sub(run.StartTime).Round(time.Millisecond))
	}
	r.line(&b, "  ", "Scenarios: %d  Stop fast: %t", len(run.Scenarios), run.StopFast)
	if run.StoppedEarly {
		r.line(&b, "  ", "%s", r.styles.Warn.Render("Stopped early: not every scenario ran"))
	}
	if _, err := io.WriteString(r.w, b.String()); err != nil {
		return err
	}
	for _, sr := range run.Scenarios {
		if err := r.Scenario(sr, "  "); err != nil {
			return err
		}
	}
	return nil
}

// Scenario renders one scenario report with every line prefixed by indent.
func (r *Renderer) Scenario(sr *domain.ScenarioReport, indent string) error {
	var b strings.Builder
	in := indent + "  "

	r.line(&b, indent, "%s %s  %s", r.styles.Title.Render("Scenario:"), sr.Name, r.verdict(sr.Successful))
	if sr.ScenarioType != "" {
		r.line(&b, in, "%s", r.styles.Dim.Render("Type: "+sr.ScenarioType))
	}
	if sr.DocumentationURL != "" {
		r.line(&b, in, "%s", r.styles.Dim.Render("Documentation: "+sr.DocumentationURL))
	}
	if sr.EndTime != nil {
		r.line(&b, in, "Duration: %s", sr.EndTime.Sub(sr.StartTime).Round(time.Millisecond))
	}
	passed, failed := sr.CheckCounts()
	r.line(&b, in, "Checks: %d passed, %d failed", passed, failed)

	for _, c := range sr.Cases {
		r.line(&b, in, "Case: %s", c.Name)
		for _, st := range c.Steps {
			r.step(&b, in+"  ", "Step: "+st.Name, st)
		}
	}
	if sr.Cleanup != nil {
		r.step(&b, in, "Cleanup", sr.Cleanup)
	}

	if len(sr.Notes) > 0 {
		r.line(&b, in, "Notes:")
		keys := make([]string, 0, len(sr.Notes))
		for k := range sr.Notes {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			r.line(&b, in+"  ", "%s: %s", k, sr.Notes[k].Message)
		}
	}

	if sr.ExecutionError != nil {
		r.line(&b, in, "%s %s: %s", r.styles.Fail.Render("Execution error:"), sr.ExecutionError.Type, firstLine(sr.ExecutionError.Message))
	}

	_, err := io.WriteString(r.w, b.String())
	return err
}

func (r *Renderer) step(b *strings.Builder, indent, title string, st *domain.StepReport) {
	summary := fmt.Sprintf("%s  %s %d  %s %d",
		title,
		r.styles.Pass.Render("✓"), len(st.PassedChecks),
		r.styles.Fail.Render("✗"), len(st.FailedChecks))
	if n := len(st.Queries); n > 0 {
		summary += r.styles.Dim.Render(fmt.Sprintf("  (%d queries)", n))
	}
	r.line(b, indent, "%s", summary)

	for _, fc := range st.FailedChecks {
		sev := fc.Severity.String()
		if style, ok := r.styles.Severity[fc.Severity]; ok {
			sev = style.Render(sev)
		}
		text := fmt.Sprintf("✗ [%s] %s: %s", sev, fc.Name, firstLine(fc.Summary))
		if len(fc.Participants) > 0 {
			text += r.styles.Dim.Render(" (" + strings.Join(fc.Participants, ", ") + ")")
		}
		r.line(b, indent+"  ", "%s", text)
	}
}

func (r *Renderer) verdict(ok bool) string {
	if ok {
		return r.styles.Pass.Render("PASS")
	}
	return r.styles.Fail.Render("FAIL")
}

// line writes one formatted line, truncated to the renderer width. Styling is
// dropped from truncated lines.
func (r *Renderer) line(b *strings.Builder, indent, format string, args ...any) {
	text := indent + fmt.Sprintf(format, args...)
	if lipgloss.Width(text) > r.width {
		text = runewidth.Truncate(ansi.Strip(text), r.width, "…")
	}
	b.WriteString(text)
	b.WriteByte('\n')
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
