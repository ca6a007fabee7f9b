package scheduleController

import (
	"context"
	"fmt"
	"testing"
	"time"

	"printfleet/config"
	"printfleet/internal/database"
	. "printfleet/internal/models"
	"printfleet/internal/repositories"
	"printfleet/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testFixture struct {
	db         database.DB
	controller ScheduleControllerInterface

	technicianID int
	clientID     int
	locationID   int
	priorityID   int
	departmentID int
	modelID      int
}

func setupTestDB(t *testing.T) database.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, gormDB.AutoMigrate(
		&Client{}, &Location{}, &Department{}, &PrinterModel{},
		&Status{}, &Priority{}, &User{}, &Printer{},
		&MaintenanceRecord{}, &Schedule{}, &ScheduleDetail{},
	))

	return database.DB{SQL: gormDB}
}

func newFixture(t *testing.T) *testFixture {
	t.Helper()

	db := setupTestDB(t)
	repos := repositories.New(db)
	svc := services.Service{Transaction: services.NewTransactionService(db)}

	technician := User{
		FirstName: "Dana",
		LastName:  "Cruz",
		Email:     "dana@example.com",
		Role:      stringPtr("technician"),
		IsActive:  true,
		SubjectID: "subject-" + t.Name(),
	}
	require.NoError(t, db.SQL.Create(&technician).Error)

	client := Client{Name: "Acme Press"}
	require.NoError(t, db.SQL.Create(&client).Error)

	location := Location{Name: "Main Plant", ClientID: client.ID}
	require.NoError(t, db.SQL.Create(&location).Error)

	department := Department{Name: "Production"}
	require.NoError(t, db.SQL.Create(&department).Error)

	model := PrinterModel{Name: "WF-C5790"}
	require.NoError(t, db.SQL.Create(&model).Error)

	priority := Priority{Name: "High"}
	require.NoError(t, db.SQL.Create(&priority).Error)

	return &testFixture{
		db:           db,
		controller:   New(repos, svc, config.Config{}, db),
		technicianID: technician.ID,
		clientID:     client.ID,
		locationID:   location.ID,
		priorityID:   priority.ID,
		departmentID: department.ID,
		modelID:      model.ID,
	}
}

func (f *testFixture) addPrinter(t *testing.T, serialNo string) int {
	t.Helper()

	printer := Printer{
		SerialNo:     serialNo,
		ModelID:      f.modelID,
		ClientID:     f.clientID,
		LocationID:   f.locationID,
		DepartmentID: f.departmentID,
	}
	require.NoError(t, f.db.SQL.Create(&printer).Error)
	return printer.ID
}

func (f *testFixture) createRequest(date string) *ReconcileRequest {
	return &ReconcileRequest{
		TechnicianID: f.technicianID,
		ClientID:     f.clientID,
		LocationID:   f.locationID,
		PriorityID:   f.priorityID,
		ScheduleDate: date,
		Actions:      ActionAddSchedule,
	}
}

func (f *testFixture) countRows(t *testing.T, model any) int64 {
	t.Helper()

	var count int64
	require.NoError(t, f.db.SQL.Model(model).Count(&count).Error)
	return count
}

func futureDate(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format("2006-01-02")
}

func TestReconcile_CreatePathAndDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	request := f.createRequest(futureDate(7))

	outcome, err := f.controller.Reconcile(ctx, request)
	require.NoError(t, err)
	assert.False(t, outcome.Duplicate)
	assert.NotZero(t, outcome.ScheduleID)
	assert.EqualValues(t, 1, f.countRows(t, &Schedule{}))
	assert.EqualValues(t, 0, f.countRows(t, &ScheduleDetail{}))

	duplicate, err := f.controller.Reconcile(ctx, request)
	require.NoError(t, err)
	assert.True(t, duplicate.Duplicate)
	assert.Equal(t, outcome.ScheduleID, duplicate.ScheduleID)
	require.NotNil(t, duplicate.Existing)
	assert.Equal(t, outcome.ScheduleID, duplicate.Existing.ID)
	assert.EqualValues(t, 1, f.countRows(t, &Schedule{}))
}

func TestReconcile_CreateWithAssignments(t *testing.T) {
	f := newFixture(t)
	printerID := f.addPrinter(t, "SN-001")

	request := f.createRequest(futureDate(3))
	request.Added = []Delta{{PrinterID: printerID, MTID: intPtr(42)}}

	outcome, err := f.controller.Reconcile(context.Background(), request)
	require.NoError(t, err)

	var details []ScheduleDetail
	require.NoError(t, f.db.SQL.Where("schedule_id = ?", outcome.ScheduleID).Find(&details).Error)
	require.Len(t, details, 1)
	assert.Equal(t, printerID, details[0].PrinterID)
	require.NotNil(t, details[0].OriginMTID)
	assert.Equal(t, 42, *details[0].OriginMTID)
	assert.False(t, details[0].IsMaintained)
}

func TestReconcile_UpdateAddsAndRemoves(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	printer10 := f.addPrinter(t, "SN-010")
	printer11 := f.addPrinter(t, "SN-011")

	create := f.createRequest(futureDate(5))
	create.Added = []Delta{{PrinterID: printer11, MTID: intPtr(101)}}
	outcome, err := f.controller.Reconcile(ctx, create)
	require.NoError(t, err)

	update := f.createRequest(futureDate(5))
	update.Actions = "Update Schedule"
	update.ScheduleID = &outcome.ScheduleID
	update.Added = []Delta{{PrinterID: printer10, MTID: intPtr(100)}}
	update.Removed = []Delta{{PrinterID: printer11, MTID: intPtr(101)}}

	_, err = f.controller.Reconcile(ctx, update)
	require.NoError(t, err)

	var details []ScheduleDetail
	require.NoError(t, f.db.SQL.Where("schedule_id = ?", outcome.ScheduleID).Find(&details).Error)
	require.Len(t, details, 1)
	assert.Equal(t, printer10, details[0].PrinterID)
}

func TestReconcile_UpdateNeverRemovesMaintainedRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	printerID := f.addPrinter(t, "SN-020")

	create := f.createRequest(futureDate(2))
	create.Added = []Delta{{PrinterID: printerID}}
	outcome, err := f.controller.Reconcile(ctx, create)
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, f.db.SQL.Model(&ScheduleDetail{}).
		Where("schedule_id = ?", outcome.ScheduleID).
		Updates(map[string]any{"is_maintained": true, "maintained_date": now}).Error)

	update := f.createRequest(futureDate(2))
	update.Actions = "Update Schedule"
	update.ScheduleID = &outcome.ScheduleID
	update.Removed = []Delta{{PrinterID: printerID}}

	_, err = f.controller.Reconcile(ctx, update)
	require.NoError(t, err)

	assert.EqualValues(t, 1, f.countRows(t, &ScheduleDetail{}))
}

func TestReconcile_ServerSideDiff(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	printerOld := f.addPrinter(t, "SN-030")
	printerNew := f.addPrinter(t, "SN-031")

	create := f.createRequest(futureDate(4))
	create.Added = []Delta{{PrinterID: printerOld}}
	outcome, err := f.controller.Reconcile(ctx, create)
	require.NoError(t, err)

	update := f.createRequest(futureDate(4))
	update.Actions = "Update Schedule"
	update.ScheduleID = &outcome.ScheduleID
	update.Original = []PrinterAssignment{{PrinterID: printerOld, IsToggled: true}}
	update.Current = []PrinterAssignment{
		{PrinterID: printerOld, IsToggled: true},
		{PrinterID: printerNew, IsToggled: true},
	}
	update.Edits = map[int]ToggleEdit{printerOld: {IsToggled: boolPtr(false)}}

	_, err = f.controller.Reconcile(ctx, update)
	require.NoError(t, err)

	var details []ScheduleDetail
	require.NoError(t, f.db.SQL.Where("schedule_id = ?", outcome.ScheduleID).Find(&details).Error)
	require.Len(t, details, 1)
	assert.Equal(t, printerNew, details[0].PrinterID)
}

func TestReconcile_StaleScheduleDate(t *testing.T) {
	f := newFixture(t)

	request := f.createRequest("2020-01-01")
	_, err := f.controller.Reconcile(context.Background(), request)

	assert.ErrorIs(t, err, ErrStaleSchedule)
	assert.EqualValues(t, 0, f.countRows(t, &Schedule{}))
}

func TestReconcile_CallerDateBaseline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// A caller west of UTC scheduling for its own today: the schedule date
	// is yesterday by the server clock but current by the caller's.
	yesterday := futureDate(-1)
	request := f.createRequest(yesterday)
	request.CurrentDate = yesterday

	outcome, err := f.controller.Reconcile(ctx, request)
	require.NoError(t, err)
	assert.NotZero(t, outcome.ScheduleID)
	assert.EqualValues(t, 1, f.countRows(t, &Schedule{}))
}

func TestReconcile_CallerDateStillGuards(t *testing.T) {
	f := newFixture(t)

	request := f.createRequest("2020-01-01")
	request.CurrentDate = futureDate(0)

	_, err := f.controller.Reconcile(context.Background(), request)

	assert.ErrorIs(t, err, ErrStaleSchedule)
	assert.EqualValues(t, 0, f.countRows(t, &Schedule{}))
}

func TestReconcile_MalformedCurrentDate(t *testing.T) {
	f := newFixture(t)

	request := f.createRequest(futureDate(1))
	request.CurrentDate = "08/01/2025"

	_, err := f.controller.Reconcile(context.Background(), request)

	assert.ErrorIs(t, err, ErrValidation)
}

func TestReconcile_MissingFields(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		mutate func(*ReconcileRequest)
	}{
		{"missing technician", func(r *ReconcileRequest) { r.TechnicianID = 0 }},
		{"missing client", func(r *ReconcileRequest) { r.ClientID = 0 }},
		{"missing location", func(r *ReconcileRequest) { r.LocationID = 0 }},
		{"missing priority", func(r *ReconcileRequest) { r.PriorityID = 0 }},
		{"missing date", func(r *ReconcileRequest) { r.ScheduleDate = "" }},
		{"malformed date", func(r *ReconcileRequest) { r.ScheduleDate = "08/01/2025" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := f.createRequest(futureDate(1))
			tt.mutate(request)

			_, err := f.controller.Reconcile(context.Background(), request)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	assert.EqualValues(t, 0, f.countRows(t, &Schedule{}))
}

func TestReconcile_UpdateWithoutIDIsFatal(t *testing.T) {
	f := newFixture(t)

	request := f.createRequest(futureDate(1))
	request.Actions = "Update Schedule"

	_, err := f.controller.Reconcile(context.Background(), request)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrValidation)
}

func TestReconcile_UpdateUnknownSchedule(t *testing.T) {
	f := newFixture(t)

	request := f.createRequest(futureDate(1))
	request.Actions = "Update Schedule"
	request.ScheduleID = intPtr(9999)

	_, err := f.controller.Reconcile(context.Background(), request)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete_BlockedByCompletedWork(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	printerID := f.addPrinter(t, "SN-040")

	create := f.createRequest(futureDate(6))
	create.Added = []Delta{{PrinterID: printerID}}
	outcome, err := f.controller.Reconcile(ctx, create)
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, f.db.SQL.Model(&ScheduleDetail{}).
		Where("schedule_id = ?", outcome.ScheduleID).
		Updates(map[string]any{"is_maintained": true, "maintained_date": now}).Error)

	err = f.controller.Delete(ctx, outcome.ScheduleID)
	assert.ErrorIs(t, err, ErrCompletedWork)
	assert.EqualValues(t, 1, f.countRows(t, &Schedule{}))
	assert.EqualValues(t, 1, f.countRows(t, &ScheduleDetail{}))
}

func TestDelete_RemovesScheduleAndDetails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	printerID := f.addPrinter(t, "SN-041")

	create := f.createRequest(futureDate(6))
	create.Added = []Delta{{PrinterID: printerID}}
	outcome, err := f.controller.Reconcile(ctx, create)
	require.NoError(t, err)

	require.NoError(t, f.controller.Delete(ctx, outcome.ScheduleID))
	assert.EqualValues(t, 0, f.countRows(t, &Schedule{}))
	assert.EqualValues(t, 0, f.countRows(t, &ScheduleDetail{}))
}

func TestDelete_Validation(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.controller.Delete(context.Background(), 0), ErrValidation)
	assert.ErrorIs(t, f.controller.Delete(context.Background(), 12345), ErrNotFound)
}

func TestTracker_AggregatesProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	printerA := f.addPrinter(t, "SN-050")
	printerB := f.addPrinter(t, "SN-051")

	create := f.createRequest(futureDate(1))
	create.Added = []Delta{{PrinterID: printerA}, {PrinterID: printerB}}
	outcome, err := f.controller.Reconcile(ctx, create)
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, f.db.SQL.Model(&ScheduleDetail{}).
		Where("schedule_id = ? AND printer_id = ?", outcome.ScheduleID, printerA).
		Updates(map[string]any{"is_maintained": true, "maintained_date": now}).Error)

	rows, err := f.controller.Tracker(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, outcome.ScheduleID, rows[0].ID)
	assert.Equal(t, 2, rows[0].Total)
	assert.Equal(t, 1, rows[0].Done)
	assert.Equal(t, 1, rows[0].Open)
	assert.Equal(t, 50, rows[0].Percent)
}
