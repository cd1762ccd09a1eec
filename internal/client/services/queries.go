package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/chemtutor/internal/client/client"
	"github.com/dmitrijs2005/chemtutor/internal/client/history"
	"github.com/dmitrijs2005/chemtutor/internal/client/models"
	"github.com/dmitrijs2005/chemtutor/internal/logging"
)

// QueryService runs the chemistry features and keeps the question history.
type QueryService interface {
	Balance(ctx context.Context, input string) (*models.BalanceResult, error)
	Ask(ctx context.Context, question, category string) (*models.Answer, error)
	Reask(ctx context.Context, index int) (history.Entry, *models.Answer, error)
	Correct(ctx context.Context, statement string) (*models.Correction, error)
	History() []history.Entry
	Categories() []string
}

type queryService struct {
	client  client.Client
	history HistoryCache
	guard   sessionGuard
	log     logging.Logger
}

func NewQueryService(c client.Client, creds CredentialStore, h HistoryCache, log logging.Logger) QueryService {
	return &queryService{
		client:  c,
		history: h,
		guard:   sessionGuard{creds: creds, log: log},
		log:     log,
	}
}

// Balance sends input to the balancer verbatim.
func (q *queryService) Balance(ctx context.Context, input string) (*models.BalanceResult, error) {
	if strings.TrimSpace(input) == "" {
		return nil, ErrEmptyInput
	}
	res, err := q.client.BalanceReaction(ctx, input)
	if err != nil {
		return nil, q.guard.check(ctx, err)
	}
	return res, nil
}

// Ask submits a question and remembers it once the server has answered.
func (q *queryService) Ask(ctx context.Context, question, category string) (*models.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyInput
	}
	category = history.NormalizeCategory(category)

	ans, err := q.client.AskQuestion(ctx, question, category)
	if err != nil {
		return nil, q.guard.check(ctx, err)
	}

	if err := q.history.Record(ctx, question, category); err != nil {
		q.log.Warn(ctx, "failed to save question history", "error", err)
	}
	return ans, nil
}

// Reask re-issues the history entry at 1-based index.
func (q *queryService) Reask(ctx context.Context, index int) (history.Entry, *models.Answer, error) {
	e, err := q.history.Lookup(index)
	if err != nil {
		return history.Entry{}, nil, err
	}
	ans, err := q.Ask(ctx, e.Question, e.Category)
	if err != nil {
		return e, nil, fmt.Errorf("re-ask %q: %w", e.Question, err)
	}
	return e, ans, nil
}

func (q *queryService) Correct(ctx context.Context, statement string) (*models.Correction, error) {
	statement = strings.TrimSpace(statement)
	if statement == "" {
		return nil, ErrEmptyInput
	}
	res, err := q.client.CorrectStatement(ctx, statement)
	if err != nil {
		return nil, q.guard.check(ctx, err)
	}
	return res, nil
}

func (q *queryService) History() []history.Entry {
	return q.history.Entries()
}

// Categories lists every category, the recently used ones first.
func (q *queryService) Categories() []string {
	recent := q.history.RecentCategories()
	seen := make(map[string]struct{}, len(history.Categories))
	out := make([]string, 0, len(history.Categories))

	for _, c := range recent {
		c = history.NormalizeCategory(c)
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	for _, c := range history.Categories {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
