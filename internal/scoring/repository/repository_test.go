package repository

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homesafe_backend/platform/apperr"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func f64(v float64) *float64 { return &v }

func TestGetProperty(t *testing.T) {
	mock := newMock(t)
	repo := New(mock)

	rows := pgxmock.NewRows([]string{"id", "name", "address_details", "ward", "district", "city", "latitude", "longitude", "elevation_m"}).
		AddRow(int64(42), "Room 12A", (*string)(nil), (*string)(nil), (*string)(nil), (*string)(nil), f64(10.776), f64(106.7), (*float64)(nil))
	mock.ExpectQuery("SELECT id, name, address_details").
		WithArgs(int64(42)).
		WillReturnRows(rows)

	p, err := repo.GetProperty(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), p.ID)
	assert.True(t, p.HasCoordinates())
	assert.Nil(t, p.ElevationM)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPropertyNotFound(t *testing.T) {
	mock := newMock(t)
	repo := New(mock)

	mock.ExpectQuery("SELECT id, name, address_details").
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	_, err := repo.GetProperty(context.Background(), 7)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.GetKind(err))
}

func TestGetScoreMissingRowIsNil(t *testing.T) {
	mock := newMock(t)
	repo := New(mock)

	mock.ExpectQuery("SELECT property_id, safety_score").
		WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"property_id"}))

	s, err := repo.GetScore(context.Background(), 5)
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestListPropertyIDsAfter(t *testing.T) {
	mock := newMock(t)
	repo := New(mock)

	rows := pgxmock.NewRows([]string{"id"}).AddRow(int64(11)).AddRow(int64(12))
	mock.ExpectQuery("SELECT id FROM properties").
		WithArgs(int64(10), 50).
		WillReturnRows(rows)

	ids, err := repo.ListPropertyIDsAfter(context.Background(), 10, 50)
	require.NoError(t, err)
	assert.Equal(t, []int64{11, 12}, ids)
}

func TestIncidentsNearAttributedDistanceZero(t *testing.T) {
	mock := newMock(t)
	repo := New(mock)

	occurred := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{"severity", "incident_type", "incident_date", "distance_m"}).
		AddRow("high", "robbery", occurred, float64(0)).
		AddRow("low", "noise", occurred, float64(340.5))
	mock.ExpectQuery("FROM security_incidents").
		WithArgs(int64(42), 10.776, 106.7, float64(5000)).
		WillReturnRows(rows)

	incidents, err := repo.IncidentsNear(context.Background(), 42, 10.776, 106.7, 5000)
	require.NoError(t, err)
	require.Len(t, incidents, 2)
	assert.Equal(t, float64(0), incidents[0].DistanceMeters)
	assert.Equal(t, "noise", incidents[1].Type)
}

func TestAverageSafetyRatingNoReviews(t *testing.T) {
	mock := newMock(t)
	repo := New(mock)

	mock.ExpectQuery("AVG\\(safety_rating\\)").
		WithArgs(int64(9)).
		WillReturnRows(pgxmock.NewRows([]string{"avg"}).AddRow((*float64)(nil)))

	avg, err := repo.AverageSafetyRating(context.Background(), 9)
	require.NoError(t, err)
	assert.Nil(t, avg)
}

func TestAdminOverrideAbsent(t *testing.T) {
	mock := newMock(t)
	repo := New(mock)

	mock.ExpectQuery("FROM admin_score_overrides").
		WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows([]string{"override_score"}))

	override, err := repo.AdminOverride(context.Background(), 3)
	require.NoError(t, err)
	assert.Nil(t, override)
}

func TestFloodReportsNear(t *testing.T) {
	mock := newMock(t)
	repo := New(mock)

	since := time.Date(2024, 8, 31, 0, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{"water_level_cm"}).AddRow(60).AddRow(20)
	mock.ExpectQuery("FROM flood_reports").
		WithArgs(10.776, 106.7, float64(200), since).
		WillReturnRows(rows)

	levels, err := repo.FloodReportsNear(context.Background(), 10.776, 106.7, 200, since)
	require.NoError(t, err)
	assert.Equal(t, []int{60, 20}, levels)
}

func TestUpsertScore(t *testing.T) {
	mock := newMock(t)
	repo := New(mock)

	mock.ExpectExec("INSERT INTO property_safety_scores").
		WithArgs(int64(42), 8.6, 10.0, 8.0, 7.0, (*float64)(nil), "2026-v3").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.UpsertScore(context.Background(), ScoreRecord{
		PropertyID:    42,
		SafetyScore:   8.6,
		CrimeScore:    10.0,
		UserScore:     8.0,
		EnvScore:      7.0,
		ConfigVersion: "2026-v3",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateElevation(t *testing.T) {
	mock := newMock(t)
	repo := New(mock)

	mock.ExpectExec("UPDATE properties SET elevation_m").
		WithArgs(int64(42), 1.5).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.UpdateElevation(context.Background(), 42, 1.5))
}
