package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

type mockSearchAPI struct {
	mu      sync.Mutex
	calls   []string
	delays  map[string]time.Duration
	results map[string][]models.SearchResult
	err     error
	ctxErrs map[string]error // ctx.Err() observed when the call finished
}

func newMockSearchAPI() *mockSearchAPI {
	return &mockSearchAPI{
		delays:  map[string]time.Duration{},
		results: map[string][]models.SearchResult{},
		ctxErrs: map[string]error{},
	}
}

func (m *mockSearchAPI) GetQuote(_ context.Context, _ string) (*models.Quote, error) {
	return nil, errors.New("not used")
}

func (m *mockSearchAPI) SearchSymbols(ctx context.Context, query string, _ int) ([]models.SearchResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, query)
	delay := m.delays[query]
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.ctxErrs[query] = ctx.Err()
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.results[query], nil
}

func (m *mockSearchAPI) callLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

func waitOutcome(t *testing.T, s *Searcher) interfaces.SearchOutcome {
	t.Helper()
	select {
	case out := <-s.Results():
		return out
	case <-time.After(2 * time.Second):
		t.Fatal("no search outcome delivered")
		return interfaces.SearchOutcome{}
	}
}

func TestSearch_DebounceCoalesces(t *testing.T) {
	client := newMockSearchAPI()
	client.results["AAP"] = []models.SearchResult{{Symbol: "AAPL", Name: "Apple Inc."}}
	s := NewSearcher(client, 30*time.Millisecond, 10, common.NewSilentLogger())
	defer s.Close()

	// Three keystrokes inside one debounce window.
	s.Search("A")
	s.Search("AA")
	s.Search("AAP")

	out := waitOutcome(t, s)
	if out.Query != "AAP" {
		t.Errorf("outcome query = %q, want AAP", out.Query)
	}
	if len(out.Results) != 1 || out.Results[0].Symbol != "AAPL" {
		t.Errorf("unexpected results: %+v", out.Results)
	}

	if calls := client.callLog(); len(calls) != 1 || calls[0] != "AAP" {
		t.Errorf("expected exactly one call for the final query, got %v", calls)
	}
}

func TestSearch_BlankQueryClearsImmediately(t *testing.T) {
	client := newMockSearchAPI()
	s := NewSearcher(client, time.Hour, 10, common.NewSilentLogger())
	defer s.Close()

	// With an hour-long debounce the empty outcome can only arrive via the
	// short-circuit path.
	s.Search("   ")

	out := waitOutcome(t, s)
	if out.Query != "" || len(out.Results) != 0 || out.Err != nil {
		t.Errorf("expected an empty clearing outcome, got %+v", out)
	}
	if calls := client.callLog(); len(calls) != 0 {
		t.Errorf("blank query must not hit the network: %v", calls)
	}
}

func TestSearch_NewerQueryCancelsInFlight(t *testing.T) {
	client := newMockSearchAPI()
	client.delays["OLD"] = 5 * time.Second
	client.results["NEW"] = []models.SearchResult{{Symbol: "NEW"}}
	s := NewSearcher(client, 5*time.Millisecond, 10, common.NewSilentLogger())
	defer s.Close()

	s.Search("OLD")

	// Let the first query leave the debounce window and start its request.
	deadline := time.After(2 * time.Second)
	for len(client.callLog()) == 0 {
		select {
		case <-deadline:
			t.Fatal("first query never fired")
		case <-time.After(time.Millisecond):
		}
	}

	s.Search("NEW")

	out := waitOutcome(t, s)
	if out.Query != "NEW" {
		t.Errorf("outcome query = %q, want NEW", out.Query)
	}

	// The superseded request was cancelled rather than left running.
	deadline = time.After(2 * time.Second)
	for {
		client.mu.Lock()
		err := client.ctxErrs["OLD"]
		client.mu.Unlock()
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				t.Errorf("stale request ended with %v, want context.Canceled", err)
			}
			break
		}
		select {
		case <-deadline:
			t.Fatal("stale request was never cancelled")
		case <-time.After(time.Millisecond):
		}
	}

	// Its cancellation error must not surface as a delivered outcome.
	select {
	case out := <-s.Results():
		t.Errorf("unexpected extra outcome delivered: %+v", out)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSearch_ErrorDelivered(t *testing.T) {
	client := newMockSearchAPI()
	client.err = errors.New("upstream unavailable")
	s := NewSearcher(client, 5*time.Millisecond, 10, common.NewSilentLogger())
	defer s.Close()

	s.Search("XYZ")

	out := waitOutcome(t, s)
	if out.Err == nil {
		t.Fatal("expected the failure on the outcome")
	}
	if len(out.Results) != 0 {
		t.Errorf("failed search should carry no results: %+v", out.Results)
	}
}

func TestSearch_LatestWinsDelivery(t *testing.T) {
	client := newMockSearchAPI()
	client.results["FIRST"] = []models.SearchResult{{Symbol: "FIRST"}}
	client.results["SECOND"] = []models.SearchResult{{Symbol: "SECOND"}}
	s := NewSearcher(client, 5*time.Millisecond, 10, common.NewSilentLogger())
	defer s.Close()

	// Two completed searches without an intervening read: the consumer sees
	// only the latest outcome.
	s.Search("FIRST")
	deadline := time.After(2 * time.Second)
	for len(client.callLog()) < 1 {
		select {
		case <-deadline:
			t.Fatal("first query never fired")
		case <-time.After(time.Millisecond):
		}
	}
	time.Sleep(20 * time.Millisecond)

	s.Search("SECOND")

	var last interfaces.SearchOutcome
	for {
		select {
		case out := <-s.Results():
			last = out
			continue
		case <-time.After(100 * time.Millisecond):
		}
		break
	}
	if last.Query != "SECOND" {
		t.Errorf("latest outcome query = %q, want SECOND", last.Query)
	}
}

func TestSearch_CloseStopsDelivery(t *testing.T) {
	client := newMockSearchAPI()
	s := NewSearcher(client, 5*time.Millisecond, 10, common.NewSilentLogger())

	s.Search("AAPL")
	s.Close()
	s.Close() // idempotent

	select {
	case out := <-s.Results():
		t.Errorf("outcome delivered after close: %+v", out)
	case <-time.After(50 * time.Millisecond):
	}
}
