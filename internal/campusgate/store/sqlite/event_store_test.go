package sqlite_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/jjayakar/campusgate/internal/campusgate/store"
	sqlitestore "github.com/jjayakar/campusgate/internal/campusgate/store/sqlite"
)

func TestEventStore_RecordEntry_InsertsOpenRow(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	es := sqlitestore.NewEventStore(conn, w)
	ctx := context.Background()

	enteredAt := time.Date(2026, 2, 15, 8, 30, 0, 0, time.UTC)
	id, err := es.RecordEntry(ctx, store.CapturedEvent{
		StudentID:  "S1001",
		Encoding:   testEncoding(0.1),
		AccessType: store.AccessAuthorized,
		EnteredAt:  enteredAt,
	})
	if err != nil {
		t.Fatalf("RecordEntry: %v", err)
	}
	if id == 0 {
		t.Fatal("expected a non-zero event id")
	}

	var (
		accessType string
		entryMs    int64
		exitMs     sql.NullInt64
	)
	err = conn.QueryRowContext(ctx, `
SELECT access_type, entry_at_ms, exit_at_ms
FROM captured_events WHERE id = ?`, id,
	).Scan(&accessType, &entryMs, &exitMs)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if accessType != "authorized" {
		t.Errorf("access_type = %q, want authorized", accessType)
	}
	if entryMs != enteredAt.UnixMilli() {
		t.Errorf("entry_at_ms = %d, want %d", entryMs, enteredAt.UnixMilli())
	}
	if exitMs.Valid {
		t.Error("new entry must have NULL exit_at_ms")
	}
}

func TestEventStore_RecordExit_ClosesLatestOpenOnly(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	es := sqlitestore.NewEventStore(conn, w)
	ctx := context.Background()

	// Two open entries for the same student; only the later one closes.
	first := time.Date(2026, 2, 15, 8, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)
	firstID, err := es.RecordEntry(ctx, store.CapturedEvent{
		StudentID: "S1001", Encoding: testEncoding(0.1),
		AccessType: store.AccessAuthorized, EnteredAt: first,
	})
	if err != nil {
		t.Fatalf("first entry: %v", err)
	}
	secondID, err := es.RecordEntry(ctx, store.CapturedEvent{
		StudentID: "S1001", Encoding: testEncoding(0.1),
		AccessType: store.AccessAuthorized, EnteredAt: second,
	})
	if err != nil {
		t.Fatalf("second entry: %v", err)
	}

	exitAt := second.Add(30 * time.Minute)
	if err := es.RecordExit(ctx, "S1001", exitAt); err != nil {
		t.Fatalf("RecordExit: %v", err)
	}

	var exitMs sql.NullInt64
	if err := conn.QueryRowContext(ctx,
		`SELECT exit_at_ms FROM captured_events WHERE id = ?`, secondID,
	).Scan(&exitMs); err != nil {
		t.Fatalf("query second: %v", err)
	}
	if !exitMs.Valid || exitMs.Int64 != exitAt.UnixMilli() {
		t.Errorf("latest entry exit_at_ms = %v, want %d", exitMs, exitAt.UnixMilli())
	}

	if err := conn.QueryRowContext(ctx,
		`SELECT exit_at_ms FROM captured_events WHERE id = ?`, firstID,
	).Scan(&exitMs); err != nil {
		t.Fatalf("query first: %v", err)
	}
	if exitMs.Valid {
		t.Error("older open entry must be left untouched")
	}
}

func TestEventStore_RecordExit_NoOpenEntry(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	es := sqlitestore.NewEventStore(conn, w)
	ctx := context.Background()

	err := es.RecordExit(ctx, "S1001", time.Now().UTC())
	if !errors.Is(err, store.ErrNoOpenEntry) {
		t.Fatalf("expected ErrNoOpenEntry, got %v", err)
	}

	// An already-closed entry does not count as open.
	if _, err := es.RecordEntry(ctx, store.CapturedEvent{
		StudentID: "S1001", Encoding: testEncoding(0.1),
		AccessType: store.AccessAuthorized,
	}); err != nil {
		t.Fatalf("entry: %v", err)
	}
	if err := es.RecordExit(ctx, "S1001", time.Now().UTC()); err != nil {
		t.Fatalf("exit: %v", err)
	}
	err = es.RecordExit(ctx, "S1001", time.Now().UTC())
	if !errors.Is(err, store.ErrNoOpenEntry) {
		t.Fatalf("expected ErrNoOpenEntry after close, got %v", err)
	}
}

func TestEventStore_Recent_OrderedNewestFirst(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	es := sqlitestore.NewEventStore(conn, w)
	ctx := context.Background()

	base := time.Date(2026, 2, 15, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if _, err := es.RecordEntry(ctx, store.CapturedEvent{
			StudentID:  "S1001",
			Encoding:   testEncoding(0.1),
			AccessType: store.AccessAuthorized,
			EnteredAt:  base.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("entry %d: %v", i, err)
		}
	}

	recent, err := es.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("expected 3 events, got %d", len(recent))
	}
	for i := 1; i < len(recent); i++ {
		if recent[i].EnteredAt.After(recent[i-1].EnteredAt) {
			t.Errorf("events not ordered newest-first: %v before %v",
				recent[i-1].EnteredAt, recent[i].EnteredAt)
		}
	}
}

func TestEventStore_CountByType(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	es := sqlitestore.NewEventStore(conn, w)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := es.RecordEntry(ctx, store.CapturedEvent{
			StudentID: "S1001", Encoding: testEncoding(0.1),
			AccessType: store.AccessAuthorized,
		}); err != nil {
			t.Fatalf("entry: %v", err)
		}
	}
	if _, err := es.RecordEntry(ctx, store.CapturedEvent{
		StudentID: "TEMP_1_20260215", Encoding: testEncoding(0.9),
		AccessType: store.AccessTemporary,
	}); err != nil {
		t.Fatalf("temp entry: %v", err)
	}

	if n, _ := es.CountByType(ctx, store.AccessAuthorized); n != 2 {
		t.Errorf("authorized count = %d, want 2", n)
	}
	if n, _ := es.CountByType(ctx, store.AccessTemporary); n != 1 {
		t.Errorf("temporary count = %d, want 1", n)
	}
}
