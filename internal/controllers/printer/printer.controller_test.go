package printerController

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
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func stringPtr(v string) *string { return &v }

type testFixture struct {
	db         database.DB
	controller PrinterControllerInterface

	technicianID int
	clientID     int
	locationID   int
	departmentID int
	modelID      int
	statusID     int
	priorityID   int
	signatoryID  int
}

func newFixture(t *testing.T) *testFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, gormDB.AutoMigrate(
		&Client{}, &Location{}, &Department{}, &PrinterModel{},
		&Status{}, &Priority{}, &Signatory{}, &User{}, &Printer{},
		&MaintenanceRecord{}, &Schedule{}, &ScheduleDetail{},
	))

	db := database.DB{SQL: gormDB}
	repos := repositories.New(db)
	svc := services.Service{Transaction: services.NewTransactionService(db)}

	technician := User{
		FirstName: "Lena",
		LastName:  "Torres",
		Email:     "lena@example.com",
		Role:      stringPtr("technician"),
		IsActive:  true,
		SubjectID: "subject-" + t.Name(),
	}
	require.NoError(t, gormDB.Create(&technician).Error)

	client := Client{Name: "Harbor Press"}
	require.NoError(t, gormDB.Create(&client).Error)

	location := Location{Name: "Dockside", ClientID: client.ID}
	require.NoError(t, gormDB.Create(&location).Error)

	department := Department{Name: "Prepress"}
	require.NoError(t, gormDB.Create(&department).Error)

	model := PrinterModel{Name: "ET-16650"}
	require.NoError(t, gormDB.Create(&model).Error)

	status := Status{Name: "Good Condition"}
	require.NoError(t, gormDB.Create(&status).Error)

	priority := Priority{Name: "Low"}
	require.NoError(t, gormDB.Create(&priority).Error)

	signatory := Signatory{FirstName: "Rui", LastName: "Chan", ClientID: &client.ID}
	require.NoError(t, gormDB.Create(&signatory).Error)

	return &testFixture{
		db:           db,
		controller:   New(repos, svc, config.Config{}, db),
		technicianID: technician.ID,
		clientID:     client.ID,
		locationID:   location.ID,
		departmentID: department.ID,
		modelID:      model.ID,
		statusID:     status.ID,
		priorityID:   priority.ID,
		signatoryID:  signatory.ID,
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

func (f *testFixture) addRecord(t *testing.T, printerID int, notes string) int {
	t.Helper()

	record := MaintenanceRecord{
		PrinterID:   printerID,
		ClientID:    f.clientID,
		StatusID:    f.statusID,
		Notes:       &notes,
		UserID:      f.technicianID,
		SignatoryID: f.signatoryID,
	}
	require.NoError(t, f.db.SQL.Create(&record).Error)
	return record.ID
}

func TestListForSchedule_JoinsLatestRecordAndToggleState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assigned := f.addPrinter(t, "SN-200")
	unassigned := f.addPrinter(t, "SN-201")
	fresh := f.addPrinter(t, "SN-202")

	f.addRecord(t, assigned, "first visit")
	latest := f.addRecord(t, assigned, "second visit")

	schedule := Schedule{
		TechnicianID: f.technicianID,
		ClientID:     f.clientID,
		LocationID:   f.locationID,
		PriorityID:   f.priorityID,
		ScheduledAt:  datatypes.Date(time.Now().UTC()),
	}
	require.NoError(t, f.db.SQL.Create(&schedule).Error)
	require.NoError(t, f.db.SQL.Create(&ScheduleDetail{
		ScheduleID: schedule.ID,
		PrinterID:  assigned,
		OriginMTID: &latest,
	}).Error)

	rows, err := f.controller.ListForSchedule(ctx, f.clientID, f.locationID, schedule.ID)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	byID := make(map[int]int, len(rows))
	for i, row := range rows {
		byID[row.ID] = i
	}

	assignedRow := rows[byID[assigned]]
	assert.True(t, assignedRow.IsToggled)
	assert.NotNil(t, assignedRow.SchedDetailsID)
	require.NotNil(t, assignedRow.MTID)
	assert.Equal(t, latest, *assignedRow.MTID)
	require.NotNil(t, assignedRow.Notes)
	assert.Equal(t, "second visit", *assignedRow.Notes)
	require.NotNil(t, assignedRow.Status)
	assert.Equal(t, "Good Condition", *assignedRow.Status)
	assert.Equal(t, "Prepress", assignedRow.Department)
	assert.Equal(t, "ET-16650", assignedRow.Model)

	unassignedRow := rows[byID[unassigned]]
	assert.False(t, unassignedRow.IsToggled)
	assert.Nil(t, unassignedRow.SchedDetailsID)

	freshRow := rows[byID[fresh]]
	assert.Nil(t, freshRow.MTID)
	assert.Nil(t, freshRow.LastMT)
	assert.Nil(t, freshRow.Status)
}

func TestListForSchedule_ZeroScheduleIsCreateMode(t *testing.T) {
	f := newFixture(t)
	f.addPrinter(t, "SN-210")

	rows, err := f.controller.ListForSchedule(context.Background(), f.clientID, f.locationID, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].IsToggled)
}

func TestListForSchedule_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.controller.ListForSchedule(context.Background(), 0, f.locationID, 0)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.controller.ListForSchedule(context.Background(), f.clientID, 0, 0)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListForSchedule_EmptyLocation(t *testing.T) {
	f := newFixture(t)

	otherLocation := Location{Name: "Warehouse", ClientID: f.clientID}
	require.NoError(t, f.db.SQL.Create(&otherLocation).Error)

	rows, err := f.controller.ListForSchedule(context.Background(), f.clientID, otherLocation.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestGetBySerial(t *testing.T) {
	f := newFixture(t)
	f.addPrinter(t, "SN-220")

	printer, err := f.controller.GetBySerial(context.Background(), "SN-220")
	require.NoError(t, err)
	assert.Equal(t, "SN-220", printer.SerialNo)
	require.NotNil(t, printer.Client)
	assert.Equal(t, "Harbor Press", printer.Client.Name)

	_, err = f.controller.GetBySerial(context.Background(), "SN-MISSING")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.controller.GetBySerial(context.Background(), "")
	assert.ErrorIs(t, err, ErrValidation)
}
