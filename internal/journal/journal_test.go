package journal

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"go.uber.org/zap/zaptest"

	"github.com/mselser95/polymarket-mirror/pkg/types"
)

func testDecision() *Decision {
	d := NewDecision("0xtx:3")
	d.MarketID = "0xcondition"
	d.Question = "Highest temperature in London on March 1?"
	d.Outcome = "Yes"
	d.Side = types.SideBuy
	d.SignalPrice = 0.96
	d.SignalNotional = 480
	d.Category = "CERTAINTY"
	d.Action = ActionExecuted
	d.SizeUSD = 25
	d.OrderID = "0xorder"
	d.OrderStatus = "matched"
	d.Mode = "paper"

	return d
}

func TestConsoleJournal_ExecutedDecision(t *testing.T) {
	j := NewConsoleJournal(zaptest.NewLogger(t))

	decision := testDecision()

	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := j.RecordDecision(context.Background(), decision)

	w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	io.Copy(&buf, r)
	output := buf.String()

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !bytes.Contains([]byte(output), []byte("TRADE MIRRORED")) {
		t.Error("expected output to contain 'TRADE MIRRORED'")
	}

	if !bytes.Contains([]byte(output), []byte(decision.Question)) {
		t.Errorf("expected output to contain the market question")
	}

	if !bytes.Contains([]byte(output), []byte("CERTAINTY")) {
		t.Error("expected output to contain the category")
	}
}

func TestConsoleJournal_SkippedDecisionIsQuiet(t *testing.T) {
	j := NewConsoleJournal(zaptest.NewLogger(t))

	decision := testDecision()
	decision.Action = ActionSkipped
	decision.Reason = "market not eligible"

	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := j.RecordDecision(context.Background(), decision)

	w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	io.Copy(&buf, r)

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if buf.Len() != 0 {
		t.Errorf("expected no console output for a skipped decision, got %q", buf.String())
	}
}

func TestConsoleJournal_Close(t *testing.T) {
	j := NewConsoleJournal(zaptest.NewLogger(t))

	if err := j.Close(); err != nil {
		t.Errorf("expected no error on close, got %v", err)
	}
}

func TestPostgresJournal_RecordDecision(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	j := &PostgresJournal{
		db:     db,
		logger: zaptest.NewLogger(t),
	}

	decision := testDecision()
	decision.DecidedAt = time.Now()

	mock.ExpectExec("INSERT INTO mirror_decisions").
		WithArgs(
			decision.ID,
			decision.SignalKey,
			decision.MarketID,
			decision.Question,
			decision.Outcome,
			string(decision.Side),
			decision.SignalPrice,
			decision.SignalNotional,
			decision.Category,
			decision.Reason,
			decision.Action,
			decision.SizeUSD,
			decision.OrderID,
			decision.OrderStatus,
			decision.Mode,
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := j.RecordDecision(context.Background(), decision); err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresJournal_RecordDecision_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	j := &PostgresJournal{
		db:     db,
		logger: zaptest.NewLogger(t),
	}

	mock.ExpectExec("INSERT INTO mirror_decisions").
		WillReturnError(sqlmock.ErrCancelled)

	if err := j.RecordDecision(context.Background(), testDecision()); err == nil {
		t.Error("expected error, got nil")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresJournal_Close(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	j := &PostgresJournal{
		db:     db,
		logger: zaptest.NewLogger(t),
	}

	mock.ExpectClose()

	if err := j.Close(); err != nil {
		t.Errorf("expected no error on close, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestJournal_Interface(t *testing.T) {
	var _ Journal = NewConsoleJournal(zaptest.NewLogger(t))

	db, _, _ := sqlmock.New()
	defer db.Close()

	var _ Journal = &PostgresJournal{db: db, logger: zaptest.NewLogger(t)}
}
