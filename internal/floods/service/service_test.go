package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"homesafe_backend/internal/floods/repository"
	"homesafe_backend/internal/floods/transport"
	"homesafe_backend/platform/logger"
)

type fakeStore struct {
	reports   []repository.FloodReport
	insertErr error
	listErr   error
	nextID    int64
}

func (f *fakeStore) Insert(_ context.Context, p repository.InsertParams) (int64, error) {
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	f.nextID++
	f.reports = append(f.reports, repository.FloodReport{
		ID:           f.nextID,
		ReporterID:   p.ReporterID,
		Latitude:     p.Latitude,
		Longitude:    p.Longitude,
		WaterLevelCm: p.WaterLevelCm,
		Description:  p.Description,
		ReportedAt:   time.Now(),
	})
	return f.nextID, nil
}

func (f *fakeStore) ListNear(_ context.Context, _, _, _ float64, limit int) ([]repository.FloodReport, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]repository.FloodReport, len(f.reports))
	copy(out, f.reports)
	sort.Slice(out, func(i, j int) bool { return out[i].ReportedAt.After(out[j].ReportedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeLocator struct {
	ids    []int64
	err    error
	radius float64
}

func (f *fakeLocator) NeighborIDs(_ context.Context, _, _, radiusMeters float64) ([]int64, error) {
	f.radius = radiusMeters
	return f.ids, f.err
}

type fakeTrigger struct {
	ids []int64
}

func (f *fakeTrigger) RecomputeAsync(propertyID int64) {
	f.ids = append(f.ids, propertyID)
}

func newTestService(store *fakeStore, locator *fakeLocator, trigger *fakeTrigger) *Service {
	return New(store, locator, trigger, logger.New("development"))
}

func TestReportStoresAndRecomputesNeighbors(t *testing.T) {
	store := &fakeStore{}
	locator := &fakeLocator{ids: []int64{3, 9}}
	trigger := &fakeTrigger{}
	svc := newTestService(store, locator, trigger)

	id, err := svc.Report(context.Background(), 42, transport.CreateFloodReportRequest{
		Latitude:     21.0278,
		Longitude:    105.8342,
		WaterLevelCm: 40,
		Description:  "  knee-deep on the corner  ",
	})
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if id == 0 {
		t.Fatal("no report ID assigned")
	}
	if store.reports[0].Description != "knee-deep on the corner" {
		t.Errorf("description = %q, want trimmed", store.reports[0].Description)
	}
	if locator.radius != affectedRadiusMeters {
		t.Errorf("neighbor radius = %v, want %v", locator.radius, affectedRadiusMeters)
	}
	if len(trigger.ids) != 2 || trigger.ids[0] != 3 || trigger.ids[1] != 9 {
		t.Errorf("recompute triggers = %v, want [3 9]", trigger.ids)
	}
}

func TestReportSurvivesNeighborLookupFailure(t *testing.T) {
	store := &fakeStore{}
	locator := &fakeLocator{err: errors.New("db down")}
	trigger := &fakeTrigger{}
	svc := newTestService(store, locator, trigger)

	id, err := svc.Report(context.Background(), 42, transport.CreateFloodReportRequest{
		Latitude:     21.0278,
		Longitude:    105.8342,
		WaterLevelCm: 60,
	})
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if id == 0 {
		t.Fatal("report not stored")
	}
	if len(trigger.ids) != 0 {
		t.Errorf("recompute triggers = %v, want none", trigger.ids)
	}
}

func TestReportInsertFailurePropagates(t *testing.T) {
	store := &fakeStore{insertErr: errors.New("insert failed")}
	trigger := &fakeTrigger{}
	svc := newTestService(store, &fakeLocator{ids: []int64{3}}, trigger)

	if _, err := svc.Report(context.Background(), 42, transport.CreateFloodReportRequest{
		Latitude:     21.0278,
		Longitude:    105.8342,
		WaterLevelCm: 40,
	}); err == nil {
		t.Fatal("expected error")
	}
	if len(trigger.ids) != 0 {
		t.Error("recompute triggered despite failed insert")
	}
}

func TestHistoryReturnsNewestFirst(t *testing.T) {
	now := time.Now()
	store := &fakeStore{reports: []repository.FloodReport{
		{ID: 1, WaterLevelCm: 20, ReportedAt: now.Add(-2 * time.Hour)},
		{ID: 2, WaterLevelCm: 55, ReportedAt: now.Add(-10 * time.Minute)},
		{ID: 3, WaterLevelCm: 35, ReportedAt: now.Add(-24 * time.Hour)},
	}}
	svc := newTestService(store, &fakeLocator{}, &fakeTrigger{})

	items, err := svc.History(context.Background(), transport.HistoryQuery{Latitude: 21.0, Longitude: 105.8})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("items = %d, want 3", len(items))
	}
	if items[0].ID != 2 || items[1].ID != 1 || items[2].ID != 3 {
		t.Errorf("order = %d,%d,%d, want newest first 2,1,3", items[0].ID, items[1].ID, items[2].ID)
	}
}
