package maintainController

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
	controller MaintainControllerInterface

	technicianID int
	clientID     int
	locationID   int
	departmentID int
	modelID      int
	statusID     int
	priorityID   int
	signatoryID  int
	partIDs      []int
}

func newFixture(t *testing.T) *testFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, gormDB.AutoMigrate(
		&Client{}, &Location{}, &Department{}, &PrinterModel{}, &Part{},
		&Status{}, &Priority{}, &Signatory{}, &User{}, &Printer{},
		&MaintenanceRecord{}, &ReplacedPart{}, &RepairedPart{}, &ColorRefill{}, &Reset{},
		&Schedule{}, &ScheduleDetail{},
	))

	db := database.DB{SQL: gormDB}
	repos := repositories.New(db)
	svc := services.Service{Transaction: services.NewTransactionService(db)}

	technician := User{
		FirstName: "Miguel",
		LastName:  "Reyes",
		Email:     "miguel@example.com",
		Role:      stringPtr("technician"),
		IsActive:  true,
		SubjectID: "subject-" + t.Name(),
	}
	require.NoError(t, gormDB.Create(&technician).Error)

	client := Client{Name: "Summit Print Co"}
	require.NoError(t, gormDB.Create(&client).Error)

	location := Location{Name: "Annex B", ClientID: client.ID}
	require.NoError(t, gormDB.Create(&location).Error)

	department := Department{Name: "Finishing"}
	require.NoError(t, gormDB.Create(&department).Error)

	model := PrinterModel{Name: "L15150"}
	require.NoError(t, gormDB.Create(&model).Error)

	status := Status{Name: "Good Condition"}
	require.NoError(t, gormDB.Create(&status).Error)

	priority := Priority{Name: "Normal"}
	require.NoError(t, gormDB.Create(&priority).Error)

	signatory := Signatory{FirstName: "Alma", LastName: "Ocampo", ClientID: &client.ID}
	require.NoError(t, gormDB.Create(&signatory).Error)

	var partIDs []int
	for _, name := range []string{"Pump Unit", "Pickup Roller"} {
		part := Part{Name: name}
		require.NoError(t, gormDB.Create(&part).Error)
		partIDs = append(partIDs, part.ID)
	}

	return &testFixture{
		db:           db,
		controller:   New(repos, svc, nil, config.Config{}, db),
		technicianID: technician.ID,
		clientID:     client.ID,
		locationID:   location.ID,
		departmentID: department.ID,
		modelID:      model.ID,
		statusID:     status.ID,
		priorityID:   priority.ID,
		signatoryID:  signatory.ID,
		partIDs:      partIDs,
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

func (f *testFixture) recordRequest(serialNo string, printerID int) *CreateRecordRequest {
	return &CreateRecordRequest{
		SerialNo:    serialNo,
		PrinterID:   printerID,
		ClientID:    f.clientID,
		LocationID:  &f.locationID,
		HeadClean:   true,
		StatusID:    f.statusID,
		UserID:      f.technicianID,
		SignatoryID: f.signatoryID,
	}
}

func (f *testFixture) addScheduleDetail(t *testing.T, printerID int, originMTID *int) ScheduleDetail {
	t.Helper()

	schedule := Schedule{
		TechnicianID: f.technicianID,
		ClientID:     f.clientID,
		LocationID:   f.locationID,
		PriorityID:   f.priorityID,
		ScheduledAt:  datatypes.Date(time.Now().UTC()),
	}
	require.NoError(t, f.db.SQL.Create(&schedule).Error)

	detail := ScheduleDetail{
		ScheduleID: schedule.ID,
		PrinterID:  printerID,
		OriginMTID: originMTID,
	}
	require.NoError(t, f.db.SQL.Create(&detail).Error)
	return detail
}

func TestCheckSerial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addPrinter(t, "SN-100")

	_, err := f.controller.CheckSerial(ctx, "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.controller.CheckSerial(ctx, "SN-UNKNOWN")
	assert.ErrorIs(t, err, ErrNotFound)

	result, err := f.controller.CheckSerial(ctx, "SN-100")
	require.NoError(t, err)
	assert.Equal(t, "SN-100", result.Printer.SerialNo)
	assert.Equal(t, "Summit Print Co", result.Printer.Client)
	require.Len(t, result.Signatories, 1)
	assert.Equal(t, f.signatoryID, result.Signatories[0].ID)
}

func TestCheckSerial_SameDayDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	printerID := f.addPrinter(t, "SN-101")

	_, err := f.controller.CreateRecord(ctx, f.recordRequest("SN-101", printerID))
	require.NoError(t, err)

	_, err = f.controller.CheckSerial(ctx, "SN-101")
	assert.ErrorIs(t, err, ErrDuplicateMaintenance)
}

func TestCreateRecord_SameDayDuplicateRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	printerID := f.addPrinter(t, "SN-102")

	id, err := f.controller.CreateRecord(ctx, f.recordRequest("SN-102", printerID))
	require.NoError(t, err)
	assert.NotZero(t, id)

	_, err = f.controller.CreateRecord(ctx, f.recordRequest("SN-102", printerID))
	assert.ErrorIs(t, err, ErrDuplicateMaintenance)

	var count int64
	require.NoError(t, f.db.SQL.Model(&MaintenanceRecord{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCreateRecord_DifferentDaysAllowed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	printerID := f.addPrinter(t, "SN-103")

	id, err := f.controller.CreateRecord(ctx, f.recordRequest("SN-103", printerID))
	require.NoError(t, err)

	yesterday := time.Now().AddDate(0, 0, -1)
	require.NoError(t, f.db.SQL.Model(&MaintenanceRecord{}).
		Where("id = ?", id).
		Update("created_at", yesterday).Error)

	_, err = f.controller.CreateRecord(ctx, f.recordRequest("SN-103", printerID))
	require.NoError(t, err)

	var count int64
	require.NoError(t, f.db.SQL.Model(&MaintenanceRecord{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestCreateRecord_ConditionalChildren(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	printerID := f.addPrinter(t, "SN-104")

	request := f.recordRequest("SN-104", printerID)
	request.ReplacedPartIDs = f.partIDs
	request.RepairedPartIDs = f.partIDs[:1]
	request.ColorRefill = &ColorRefillRequest{Cyan: true, Black: true}
	request.Reset = &ResetRequest{Box: true}

	id, err := f.controller.CreateRecord(ctx, request)
	require.NoError(t, err)

	var replaced []ReplacedPart
	require.NoError(t, f.db.SQL.Where("mt_id = ?", id).Find(&replaced).Error)
	assert.Len(t, replaced, 2)

	var repaired []RepairedPart
	require.NoError(t, f.db.SQL.Where("mt_id = ?", id).Find(&repaired).Error)
	assert.Len(t, repaired, 1)

	var refill ColorRefill
	require.NoError(t, f.db.SQL.First(&refill, "mt_id = ?", id).Error)
	assert.True(t, refill.Cyan)
	assert.True(t, refill.Black)
	assert.False(t, refill.Magenta)

	var reset Reset
	require.NoError(t, f.db.SQL.First(&reset, "mt_id = ?", id).Error)
	assert.True(t, reset.Box)
	assert.False(t, reset.Program)
}

func TestCreateRecord_NoSectionsNoChildRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	printerID := f.addPrinter(t, "SN-105")

	_, err := f.controller.CreateRecord(ctx, f.recordRequest("SN-105", printerID))
	require.NoError(t, err)

	for _, model := range []any{&ReplacedPart{}, &RepairedPart{}, &ColorRefill{}, &Reset{}} {
		var count int64
		require.NoError(t, f.db.SQL.Model(model).Count(&count).Error)
		assert.EqualValues(t, 0, count)
	}
}

func TestCreateRecord_Validation(t *testing.T) {
	f := newFixture(t)
	printerID := f.addPrinter(t, "SN-106")

	tests := []struct {
		name   string
		mutate func(*CreateRecordRequest)
	}{
		{"missing serial", func(r *CreateRecordRequest) { r.SerialNo = "" }},
		{"missing printer", func(r *CreateRecordRequest) { r.PrinterID = 0 }},
		{"missing client", func(r *CreateRecordRequest) { r.ClientID = 0 }},
		{"missing status", func(r *CreateRecordRequest) { r.StatusID = 0 }},
		{"missing user", func(r *CreateRecordRequest) { r.UserID = 0 }},
		{"missing signatory", func(r *CreateRecordRequest) { r.SignatoryID = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := f.recordRequest("SN-106", printerID)
			tt.mutate(request)

			_, err := f.controller.CreateRecord(context.Background(), request)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestCompleteVisit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	printerID := f.addPrinter(t, "SN-110")

	origin := 777
	detail := f.addScheduleDetail(t, printerID, &origin)

	request := &CompleteVisitRequest{
		CreateRecordRequest: *f.recordRequest("SN-110", printerID),
		ScheduleDetailID:    detail.ID,
	}

	id, err := f.controller.CompleteVisit(ctx, request)
	require.NoError(t, err)

	var record MaintenanceRecord
	require.NoError(t, f.db.SQL.First(&record, "id = ?", id).Error)
	require.NotNil(t, record.OriginMTID)
	assert.Equal(t, origin, *record.OriginMTID)

	var updated ScheduleDetail
	require.NoError(t, f.db.SQL.First(&updated, "id = ?", detail.ID).Error)
	assert.True(t, updated.IsMaintained)
	assert.NotNil(t, updated.MaintainedDate)
}

func TestCompleteVisit_UnknownDetail(t *testing.T) {
	f := newFixture(t)
	printerID := f.addPrinter(t, "SN-111")

	request := &CompleteVisitRequest{
		CreateRecordRequest: *f.recordRequest("SN-111", printerID),
		ScheduleDetailID:    9999,
	}

	_, err := f.controller.CompleteVisit(context.Background(), request)
	assert.ErrorIs(t, err, ErrNotFound)

	var count int64
	require.NoError(t, f.db.SQL.Model(&MaintenanceRecord{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestCompleteVisit_DuplicateLeavesDetailOpen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	printerID := f.addPrinter(t, "SN-112")
	detail := f.addScheduleDetail(t, printerID, nil)

	_, err := f.controller.CreateRecord(ctx, f.recordRequest("SN-112", printerID))
	require.NoError(t, err)

	request := &CompleteVisitRequest{
		CreateRecordRequest: *f.recordRequest("SN-112", printerID),
		ScheduleDetailID:    detail.ID,
	}
	_, err = f.controller.CompleteVisit(ctx, request)
	assert.ErrorIs(t, err, ErrDuplicateMaintenance)

	var updated ScheduleDetail
	require.NoError(t, f.db.SQL.First(&updated, "id = ?", detail.ID).Error)
	assert.False(t, updated.IsMaintained)
}

func TestMarkDetail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	printerID := f.addPrinter(t, "SN-113")
	detail := f.addScheduleDetail(t, printerID, nil)

	require.NoError(t, f.controller.MarkDetail(ctx, detail.ID))

	var updated ScheduleDetail
	require.NoError(t, f.db.SQL.First(&updated, "id = ?", detail.ID).Error)
	assert.True(t, updated.IsMaintained)

	assert.ErrorIs(t, f.controller.MarkDetail(ctx, 9999), ErrNotFound)
	assert.ErrorIs(t, f.controller.MarkDetail(ctx, 0), ErrValidation)
}

func TestPatchSignPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	printerID := f.addPrinter(t, "SN-114")

	id, err := f.controller.CreateRecord(ctx, f.recordRequest("SN-114", printerID))
	require.NoError(t, err)

	require.NoError(t, f.controller.PatchSignPath(ctx, id, "signatures/sn-114.png"))

	var record MaintenanceRecord
	require.NoError(t, f.db.SQL.First(&record, "id = ?", id).Error)
	require.NotNil(t, record.SignPath)
	assert.Equal(t, "signatures/sn-114.png", *record.SignPath)

	assert.ErrorIs(t, f.controller.PatchSignPath(ctx, 9999, "x.png"), ErrNotFound)
	assert.ErrorIs(t, f.controller.PatchSignPath(ctx, 0, ""), ErrValidation)
}
