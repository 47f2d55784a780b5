package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"libretto/internal/testutil"
	"libretto/models"
	"libretto/utils"
)

func TestRecommendEmptyQueryNeverReachesNetwork(t *testing.T) {
	stub := testutil.NewStubGateway()
	ctl := New(stub)

	if ctl.CanRecommend("   ") {
		t.Fatal("blank query should disable the action")
	}

	_, err := ctl.StartRecommend(context.Background(), "")
	var ve *utils.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if n := stub.TotalCalls(); n != 0 {
		t.Fatalf("expected no network calls, got %d", n)
	}
	if ctl.Recommend().State != StateIdle {
		t.Fatalf("flow should stay idle, got %s", ctl.Recommend().State)
	}
}

func TestRecommendOutcomes(t *testing.T) {
	tests := []struct {
		name      string
		result    models.Recommendation
		err       error
		wantState FlowState
		wantErr   string
	}{
		{
			name:      "match",
			result:    models.Recommendation{Title: "Dune", Found: true},
			wantState: StateSuccess,
		},
		{
			name:      "no match is still success",
			result:    models.Recommendation{},
			wantState: StateSuccess,
		},
		{
			name:      "server rejection surfaces its message",
			err:       &utils.RequestError{Op: "recommend", Status: 500, Message: "model unavailable"},
			wantState: StateError,
			wantErr:   "model unavailable",
		},
		{
			name:      "transport failure gets connectivity text",
			err:       &utils.TransportError{Op: "recommend", Err: errors.New("refused")},
			wantState: StateError,
			wantErr:   "Cannot reach the library server",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := testutil.NewStubGateway()
			stub.RecommendFn = func(ctx context.Context, query string) (models.Recommendation, error) {
				return tt.result, tt.err
			}
			ctl := New(stub)

			done, err := ctl.StartRecommend(context.Background(), "anything")
			if err != nil {
				t.Fatalf("start: %v", err)
			}
			<-done

			snap := ctl.Recommend()
			if snap.State != tt.wantState {
				t.Fatalf("state = %s, want %s", snap.State, tt.wantState)
			}
			if snap.Err != tt.wantErr {
				t.Fatalf("err = %q, want %q", snap.Err, tt.wantErr)
			}
			if tt.wantState == StateSuccess && snap.Result != tt.result {
				t.Fatalf("result = %+v, want %+v", snap.Result, tt.result)
			}
		})
	}
}

func TestErrorClearedOnNextAttempt(t *testing.T) {
	stub := testutil.NewStubGateway()
	fail := true
	stub.RecommendFn = func(ctx context.Context, query string) (models.Recommendation, error) {
		if fail {
			return models.Recommendation{}, &utils.RequestError{Op: "recommend", Status: 500, Message: "boom"}
		}
		return models.Recommendation{Title: "Dune", Found: true}, nil
	}
	ctl := New(stub)

	done, _ := ctl.StartRecommend(context.Background(), "q")
	<-done
	if ctl.Recommend().State != StateError {
		t.Fatalf("expected error state, got %s", ctl.Recommend().State)
	}

	fail = false
	done, _ = ctl.StartRecommend(context.Background(), "q")
	<-done
	snap := ctl.Recommend()
	if snap.State != StateSuccess || snap.Err != "" {
		t.Fatalf("retry should clear the error: %+v", snap)
	}
}

func TestSummarizeValidation(t *testing.T) {
	stub := testutil.NewStubGateway()
	ctl := New(stub)

	// Neither form, both forms, blank text.
	inputs := []models.SummarizeInput{
		{},
		{Text: "x", BookID: 1},
		{Text: "   "},
	}
	for _, in := range inputs {
		_, err := ctl.StartSummarize(context.Background(), in)
		var ve *utils.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("input %+v: expected ValidationError, got %v", in, err)
		}
	}
	if n := stub.TotalCalls(); n != 0 {
		t.Fatalf("expected no network calls, got %d", n)
	}

	if ctl.CanSummarizeBook(models.Book{ID: 4}) {
		t.Fatal("book without source summary must not be summarizable")
	}
	if !ctl.CanSummarizeBook(models.Book{ID: 4, Summary: "A detective story."}) {
		t.Fatal("book with source summary should be summarizable")
	}
}

func TestSummarizeSuccess(t *testing.T) {
	stub := testutil.NewStubGateway()
	stub.SummarizeFn = func(ctx context.Context, in models.SummarizeInput) (string, error) {
		return "generated", nil
	}
	ctl := New(stub)

	done, err := ctl.StartSummarize(context.Background(), models.SummarizeInput{BookID: 12})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	<-done
	snap := ctl.Summarize()
	if snap.State != StateSuccess || snap.Summary != "generated" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

// Two overlapping recommend requests resolve in completion order: the
// response that lands last wins, even when it belongs to the earlier request.
// This is the documented last-arrival-wins gap, not request-order consistency.
func TestLastArrivalWins(t *testing.T) {
	release := make(chan struct{})
	firstStarted := make(chan struct{})

	stub := testutil.NewStubGateway()
	stub.RecommendFn = func(ctx context.Context, query string) (models.Recommendation, error) {
		if query == "A" {
			close(firstStarted)
			<-release // hold A's response until B has been applied
		}
		return models.Recommendation{Title: query, Found: true}, nil
	}
	ctl := New(stub)

	doneA, err := ctl.StartRecommend(context.Background(), "A")
	if err != nil {
		t.Fatalf("start A: %v", err)
	}
	<-firstStarted

	doneB, err := ctl.StartRecommend(context.Background(), "B")
	if err != nil {
		t.Fatalf("start B: %v", err)
	}
	<-doneB

	if got := ctl.Recommend().Result.Title; got != "B" {
		t.Fatalf("after B completed, expected B, got %q", got)
	}

	close(release)
	<-doneA

	if got := ctl.Recommend().Result.Title; got != "A" {
		t.Fatalf("late-arriving A should overwrite B, got %q", got)
	}
}

// A pending summarize must not block a recommend, and vice versa.
func TestFlowsAreIndependent(t *testing.T) {
	block := make(chan struct{})
	stub := testutil.NewStubGateway()
	stub.SummarizeFn = func(ctx context.Context, in models.SummarizeInput) (string, error) {
		<-block
		return "late", nil
	}
	stub.RecommendFn = func(ctx context.Context, query string) (models.Recommendation, error) {
		return models.Recommendation{Title: "Dune", Found: true}, nil
	}
	ctl := New(stub)

	sumDone, err := ctl.StartSummarize(context.Background(), models.SummarizeInput{Text: "long text"})
	if err != nil {
		t.Fatalf("start summarize: %v", err)
	}

	recDone, err := ctl.StartRecommend(context.Background(), "desert epic")
	if err != nil {
		t.Fatalf("start recommend: %v", err)
	}

	select {
	case <-recDone:
	case <-time.After(2 * time.Second):
		t.Fatal("recommend blocked by pending summarize")
	}
	if ctl.Summarize().State != StatePending {
		t.Fatalf("summarize should still be pending, got %s", ctl.Summarize().State)
	}

	close(block)
	<-sumDone
	if ctl.Summarize().Summary != "late" {
		t.Fatalf("summarize result lost: %+v", ctl.Summarize())
	}
}
