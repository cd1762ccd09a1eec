package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/chemtutor/internal/client/history"
	"github.com/dmitrijs2005/chemtutor/internal/client/models"
	"github.com/dmitrijs2005/chemtutor/internal/client/suggest"
	"github.com/dustin/go-humanize"
)

var errUsageAgain = errors.New("usage: again <n>")

// Health checks that the server answers.
func (a *App) Health(ctx context.Context, _ string) error {
	return a.exec(ctx, func(ctx context.Context) (string, error) {
		if err := a.authService.Ping(ctx); err != nil {
			return "", err
		}
		return "Server is up.\n", nil
	})
}

// Balance balances the equation typed after the command, or asks for one.
// The text is sent as typed.
func (a *App) Balance(ctx context.Context, arg string) error {
	input, err := argOrPrompt(a.reader, arg, "Enter a reaction (e.g. H2 + O2 -> H2O)", a.out)
	if err != nil {
		return err
	}

	return a.exec(ctx, func(ctx context.Context) (string, error) {
		res, err := a.queryService.Balance(ctx, input)
		if err != nil {
			return "", err
		}
		return renderBalance(res), nil
	})
}

// Ask sends a question (typed after the command or prompted for) under a
// category chosen by the user.
func (a *App) Ask(ctx context.Context, arg string) error {
	question, err := argOrPrompt(a.reader, arg, "Enter your question", a.out)
	if err != nil {
		return err
	}

	prompt := fmt.Sprintf("Category (%s) [%s]", strings.Join(a.queryService.Categories(), ", "), history.DefaultCategory)
	category, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return err
	}

	return a.exec(ctx, func(ctx context.Context) (string, error) {
		ans, err := a.queryService.Ask(ctx, question, category)
		if err != nil {
			return "", err
		}
		return renderAnswer(strings.TrimSpace(question), ans), nil
	})
}

// Again re-asks the n-th question of the history listing.
func (a *App) Again(ctx context.Context, arg string) error {
	fields := strings.Fields(arg)
	if len(fields) != 1 {
		a.println("Usage: again <n>")
		return errUsageAgain
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		a.println("Usage: again <n>")
		return errUsageAgain
	}

	return a.exec(ctx, func(ctx context.Context) (string, error) {
		e, ans, err := a.queryService.Reask(ctx, n)
		if err != nil {
			return "", err
		}
		return renderAnswer(e.Question, ans), nil
	})
}

// History lists the remembered questions, newest first.
func (a *App) History(_ context.Context, _ string) error {
	entries := a.queryService.History()
	if len(entries) == 0 {
		a.println("No questions yet.")
		return nil
	}
	for i, e := range entries {
		a.printf("%2d. [%s] %s (%s)\n", i+1, e.Category, e.Question, humanize.Time(e.Time()))
	}
	return nil
}

func (a *App) Categories(_ context.Context, _ string) error {
	a.println("Categories:", strings.Join(a.queryService.Categories(), ", "))
	return nil
}

// Correct checks a statement and suggests related ones to practise on.
func (a *App) Correct(ctx context.Context, arg string) error {
	var (
		statement string
		err       error
	)
	if strings.TrimSpace(arg) != "" {
		statement = arg
	} else {
		statement, err = GetMultiline(a.reader, "Enter a chemistry statement to check", a.out)
		if err != nil {
			return err
		}
	}

	return a.exec(ctx, func(ctx context.Context) (string, error) {
		res, err := a.queryService.Correct(ctx, statement)
		if err != nil {
			return "", err
		}
		return renderCorrection(statement, res), nil
	})
}

func renderBalance(res *models.BalanceResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Balanced: %s\n", res.Balanced)
	if res.Type != "" {
		fmt.Fprintf(&b, "Type: %s\n", res.Type)
	}
	writeCompounds(&b, "Reactants", res.Metadata.Reactants)
	writeCompounds(&b, "Products", res.Metadata.Products)

	if len(res.OxidationStates) > 0 {
		b.WriteString("Oxidation states:\n")
		for _, side := range []string{"reactants", "products"} {
			for i, atoms := range res.OxidationStates[side] {
				fmt.Fprintf(&b, "  %s #%d: %s\n", side, i+1, formatCharges(atoms))
			}
		}
	}
	return b.String()
}

func writeCompounds(b *strings.Builder, title string, compounds []models.Compound) {
	if len(compounds) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", title)
	for _, c := range compounds {
		label := c.Formula
		if label == "" {
			label = c.Input
		}
		fmt.Fprintf(b, "  %d %s", max(c.Coeff, 1), label)
		if name := c.Name(); name != "" {
			fmt.Fprintf(b, "  %s", name)
		}
		if w, ok := c.Weight(); ok {
			fmt.Fprintf(b, "  (%s g/mol)", humanize.FormatFloat("#,###.###", w))
		}
		b.WriteString("\n")
	}
}

// formatCharges renders an atom index → charge table in index order.
func formatCharges(atoms map[string]int) string {
	keys := make([]string, 0, len(atoms))
	for k := range atoms {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ni, ei := strconv.Atoi(keys[i])
		nj, ej := strconv.Atoi(keys[j])
		if ei == nil && ej == nil {
			return ni < nj
		}
		return keys[i] < keys[j]
	})

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s:%+d", k, atoms[k]))
	}
	return strings.Join(parts, " ")
}

func renderAnswer(question string, ans *models.Answer) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Q: %s\n", question)
	fmt.Fprintf(&b, "A: %s\n", ans.Answer)
	if len(ans.Sources) > 0 {
		b.WriteString("Sources:\n")
		for _, s := range ans.Sources {
			fmt.Fprintf(&b, "  - %s\n", s)
		}
	}
	if ups := suggest.FollowUps(question); len(ups) > 0 {
		b.WriteString("You might also ask:\n")
		for _, s := range ups {
			fmt.Fprintf(&b, "  - %s\n", s)
		}
	}
	return b.String()
}

func renderCorrection(statement string, res *models.Correction) string {
	var b strings.Builder

	if res.Changed {
		original := res.Original
		if original == "" {
			original = statement
		}
		fmt.Fprintf(&b, "Original:  %s\n", original)
		fmt.Fprintf(&b, "Corrected: %s\n", res.Corrected)
	} else {
		b.WriteString("The statement looks correct.\n")
	}
	if rel := suggest.Related(statement); len(rel) > 0 {
		b.WriteString("Try checking these:\n")
		for _, s := range rel {
			fmt.Fprintf(&b, "  - %s\n", s)
		}
	}
	return b.String()
}
