package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/devskill-org/energy-dashboard/forecast"
)

func prepareSQLite(t *testing.T) *SQLStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := OpenSQLite(context.Background(), path)
	if err != nil {
		t.Fatalf("Error creating database: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRecord(location string, created time.Time, solar ...float64) Record {
	data := &forecast.Data{Location: location, ForecastPeriod: len(solar)}
	for i, v := range solar {
		data.Predictions = append(data.Predictions, forecast.Prediction{
			Date:        created.AddDate(0, 0, i).Format("Jan 2"),
			Solar:       v,
			Confidence:  90,
			Weather:     "sunny",
			Temperature: 24,
		})
	}
	req := forecast.Request{Location: location, Days: len(solar), EnergyType: forecast.EnergySolar}
	return NewRecord(req, data, created)
}

func TestNewRecord(t *testing.T) {
	now := time.Date(2025, 10, 18, 9, 30, 15, 500, time.UTC)
	r := sampleRecord("Assam, India", now, 1.23, 5.68, 9)

	if r.ID == "" {
		t.Error("Expected generated id")
	}
	if r.TotalExpected != 15.91 {
		t.Errorf("Expected total 15.91, got %v", r.TotalExpected)
	}
	if r.CreatedAt.Nanosecond() != 0 {
		t.Error("Expected creation time truncated to seconds")
	}
	if r.Days != 3 || r.EnergyType != "solar" {
		t.Errorf("Unexpected request fields: %+v", r)
	}
	if other := sampleRecord("Assam, India", now, 1); other.ID == r.ID {
		t.Error("Expected unique ids")
	}
}

func TestSQLiteSaveAndRecent(t *testing.T) {
	store := prepareSQLite(t)
	ctx := context.Background()
	base := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)

	records := []Record{
		sampleRecord("austin", base, 10),
		sampleRecord("denver", base.Add(time.Hour), 20),
		sampleRecord("austin", base.Add(2*time.Hour), 30, 40),
	}
	for _, r := range records {
		if err := store.SaveForecast(ctx, r); err != nil {
			t.Fatalf("SaveForecast failed: %v", err)
		}
	}

	all, err := store.Recent(ctx, "", 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(all))
	}
	if all[0].ID != records[2].ID {
		t.Error("Expected newest record first")
	}
	if len(all[0].Predictions) != 2 || all[0].Predictions[1].Solar != 40 {
		t.Errorf("Predictions did not round-trip: %+v", all[0].Predictions)
	}
	if !all[0].CreatedAt.Equal(records[2].CreatedAt) {
		t.Errorf("Expected created %v, got %v", records[2].CreatedAt, all[0].CreatedAt)
	}

	austin, err := store.Recent(ctx, "austin", 1)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(austin) != 1 || austin[0].ID != records[2].ID {
		t.Errorf("Expected latest austin record, got %+v", austin)
	}
}

func TestSQLiteDuplicateID(t *testing.T) {
	store := prepareSQLite(t)
	r := sampleRecord("austin", time.Now(), 1)

	if err := store.SaveForecast(context.Background(), r); err != nil {
		t.Fatalf("SaveForecast failed: %v", err)
	}
	if err := store.SaveForecast(context.Background(), r); err == nil {
		t.Error("Expected error saving a duplicate id")
	}
}

func TestSQLiteMonthlySolar(t *testing.T) {
	store := prepareSQLite(t)
	ctx := context.Background()

	for _, r := range []Record{
		sampleRecord("austin", time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), 100),
		sampleRecord("austin", time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC), 50.5),
		sampleRecord("austin", time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), 10),
		sampleRecord("austin", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 999),
	} {
		if err := store.SaveForecast(ctx, r); err != nil {
			t.Fatalf("SaveForecast failed: %v", err)
		}
	}

	totals, err := store.MonthlySolar(ctx, 2025, time.UTC)
	if err != nil {
		t.Fatalf("MonthlySolar failed: %v", err)
	}
	if totals[time.March] != 150.5 {
		t.Errorf("Expected March 150.5, got %v", totals[time.March])
	}
	if totals[time.July] != 10 {
		t.Errorf("Expected July 10, got %v", totals[time.July])
	}
	if len(totals) != 2 {
		t.Errorf("Expected 2 months, got %d", len(totals))
	}
}

func TestSQLitePrune(t *testing.T) {
	store := prepareSQLite(t)
	ctx := context.Background()
	now := time.Date(2025, 10, 18, 0, 0, 0, 0, time.UTC)

	store.SaveForecast(ctx, sampleRecord("austin", now.AddDate(0, 0, -100), 1))
	store.SaveForecast(ctx, sampleRecord("austin", now.AddDate(0, 0, -1), 2))

	n, err := store.Prune(ctx, now.AddDate(0, 0, -90))
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 pruned record, got %d", n)
	}

	left, _ := store.Recent(ctx, "", 10)
	if len(left) != 1 || left[0].TotalExpected != 2 {
		t.Errorf("Unexpected remaining records: %+v", left)
	}
}

func TestRebind(t *testing.T) {
	pg := &SQLStore{postgres: true}
	got := pg.rebind("SELECT a FROM t WHERE x = ? AND y < ? LIMIT ?")
	want := "SELECT a FROM t WHERE x = $1 AND y < $2 LIMIT $3"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	lite := &SQLStore{}
	if q := lite.rebind("x = ?"); q != "x = ?" {
		t.Errorf("SQLite query should be unchanged, got %q", q)
	}
}

func TestPostgresStore(t *testing.T) {
	connString := os.Getenv("TEST_POSTGRES_CONN")
	if connString == "" {
		t.Skip("Skipping test: TEST_POSTGRES_CONN not set")
	}

	ctx := context.Background()
	store, err := OpenPostgres(ctx, connString)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	if _, err := store.db.ExecContext(ctx, "DELETE FROM forecast_runs"); err != nil {
		t.Fatalf("Failed to clean up table: %v", err)
	}

	r := sampleRecord("portland", time.Now(), 3.5, 4.5)
	if err := store.SaveForecast(ctx, r); err != nil {
		t.Fatalf("SaveForecast failed: %v", err)
	}

	got, err := store.Recent(ctx, "portland", 5)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != r.ID || got[0].TotalExpected != 8 {
		t.Errorf("Unexpected records: %+v", got)
	}

	n, err := store.Prune(ctx, time.Now().Add(time.Hour))
	if err != nil || n != 1 {
		t.Errorf("Expected 1 pruned record, got %d (%v)", n, err)
	}
}
