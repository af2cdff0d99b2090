package payroll

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	domainauth "hrms/internal/domain/auth"
	"hrms/internal/domain/attendance"
)

type fakeStore struct {
	records   map[string]Record
	overrides map[string][]byte
	nextID    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[string]Record{}, overrides: map[string][]byte{}}
}

func (f *fakeStore) Record(_ context.Context, tenantID, id string) (Record, error) {
	r, ok := f.records[id]
	if !ok || r.TenantID != tenantID {
		return Record{}, ErrNotFound
	}
	return r, nil
}

func (f *fakeStore) RecordForPeriod(_ context.Context, tenantID, employeeID, payPeriod string) (Record, error) {
	for _, r := range f.records {
		if r.TenantID == tenantID && r.EmployeeID == employeeID && r.PayPeriod == payPeriod {
			return r, nil
		}
	}
	return Record{}, ErrNotFound
}

func (f *fakeStore) List(_ context.Context, tenantID string, filter ListFilter) ([]Record, error) {
	var out []Record
	for _, r := range f.records {
		if r.TenantID != tenantID {
			continue
		}
		if filter.EmployeeID != "" && r.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.PayPeriod != "" && r.PayPeriod != filter.PayPeriod {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeStore) Upsert(_ context.Context, record Record) (Record, error) {
	for id, existing := range f.records {
		if existing.TenantID == record.TenantID && existing.EmployeeID == record.EmployeeID &&
			existing.PayPeriod == record.PayPeriod {
			record.ID = id
			record.Status = existing.Status
			f.records[id] = record
			return record, nil
		}
	}
	f.nextID++
	record.ID = fmt.Sprintf("pr-%d", f.nextID)
	f.records[record.ID] = record
	return record, nil
}

func (f *fakeStore) SetStatus(_ context.Context, tenantID, id string, record Record) (Record, error) {
	existing, ok := f.records[id]
	if !ok || existing.TenantID != tenantID {
		return Record{}, ErrNotFound
	}
	existing.Status = record.Status
	existing.PaymentMethod = record.PaymentMethod
	existing.PaymentReference = record.PaymentReference
	existing.PaidByUserID = record.PaidByUserID
	existing.PaidAt = record.PaidAt
	f.records[id] = existing
	return existing, nil
}

func (f *fakeStore) OverrideJSON(_ context.Context, tenantID, employeeID, payPeriod string) ([]byte, error) {
	return f.overrides[tenantID+"/"+employeeID+"/"+payPeriod], nil
}

func (f *fakeStore) SetOverride(_ context.Context, tenantID, employeeID, payPeriod string, rules []byte) error {
	f.overrides[tenantID+"/"+employeeID+"/"+payPeriod] = rules
	return nil
}

type fakeDirectory struct {
	employees []EmployeeInfo
	settings  []byte
}

func (f *fakeDirectory) Employee(_ context.Context, _, employeeID string) (EmployeeInfo, error) {
	for _, e := range f.employees {
		if e.ID == employeeID {
			return e, nil
		}
	}
	return EmployeeInfo{}, ErrNotFound
}

func (f *fakeDirectory) ListActiveEmployees(_ context.Context, _ string, ids []string) ([]EmployeeInfo, error) {
	if len(ids) == 0 {
		return f.employees, nil
	}
	var out []EmployeeInfo
	for _, e := range f.employees {
		for _, id := range ids {
			if e.ID == id {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

func (f *fakeDirectory) EmployeeByUserID(_ context.Context, _, userID string) (EmployeeInfo, error) {
	for _, e := range f.employees {
		if e.UserID == userID {
			return e, nil
		}
	}
	return EmployeeInfo{}, ErrNotFound
}

func (f *fakeDirectory) SettingsJSON(_ context.Context, _ string) ([]byte, error) {
	return f.settings, nil
}

type fakeAttendance struct {
	summaries map[string]attendance.Summary
}

func (f *fakeAttendance) Summary(_ context.Context, _, employeeID string, _, _ time.Time) (attendance.Summary, error) {
	return f.summaries[employeeID], nil
}

type fakePerms struct {
	grants map[string][]string
	admins []string
}

func (f *fakePerms) HasPermission(_ context.Context, roleID, permission string) (bool, error) {
	for _, p := range f.grants[roleID] {
		if p == permission {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePerms) ApproverUserIDs(_ context.Context, _, _ string) ([]string, error) {
	return f.admins, nil
}

type fixture struct {
	service *Service
	store   *fakeStore
	dir     *fakeDirectory
	att     *fakeAttendance
}

func newFixture() fixture {
	store := newFakeStore()
	dir := &fakeDirectory{
		employees: []EmployeeInfo{
			{ID: "emp-1", UserID: "user-1", BaseSalary: decimal.NewFromInt(1000)},
			{ID: "emp-2", UserID: "user-2", BaseSalary: decimal.NewFromInt(2000)},
		},
	}
	att := &fakeAttendance{summaries: map[string]attendance.Summary{
		"emp-1": {DaysWorked: 20, TotalOvertime: decimal.NewFromInt(4)},
		"emp-2": {DaysWorked: 18},
	}}
	perms := &fakePerms{
		grants: map[string][]string{
			"role-hr": {domainauth.PermPayrollApprove, domainauth.PermPayrollGenerate},
		},
		admins: []string{"user-hr"},
	}
	return fixture{service: NewService(store, dir, att, perms), store: store, dir: dir, att: att}
}

var (
	hrActor       = domainauth.UserContext{UserID: "user-hr", TenantID: "t-1", RoleID: "role-hr"}
	employeeActor = domainauth.UserContext{UserID: "user-1", TenantID: "t-1", RoleID: "role-emp"}
)

func TestGenerateBatch(t *testing.T) {
	fx := newFixture()

	result, err := fx.service.Generate(context.Background(), hrActor, GenerateInput{PayPeriod: "2024-03"})
	require.NoError(t, err)
	require.Equal(t, 2, result.Generated)
	require.Equal(t, 0, result.Skipped)
	require.Empty(t, result.Failures)

	record, err := fx.store.RecordForPeriod(context.Background(), "t-1", "emp-1", "2024-03")
	require.NoError(t, err)
	require.Equal(t, StatusDraft, record.Status)
	require.True(t, record.TotalAllowances.Equal(decimal.NewFromInt(100)), "allowances = %s", record.TotalAllowances)
	require.True(t, record.TotalDeductions.Equal(decimal.NewFromInt(50)), "deductions = %s", record.TotalDeductions)
	require.True(t, record.NetSalary.Equal(decimal.NewFromInt(1050)), "net = %s", record.NetSalary)
	require.Equal(t, 20, record.Attendance.DaysWorked)
}

func TestGenerateSkipsEmployeesWithoutAttendance(t *testing.T) {
	fx := newFixture()
	fx.att.summaries["emp-2"] = attendance.Summary{}

	result, err := fx.service.Generate(context.Background(), hrActor, GenerateInput{PayPeriod: "2024-03"})
	require.NoError(t, err)
	require.Equal(t, 1, result.Generated)
	require.Equal(t, 1, result.Skipped)
}

func TestGenerateRespectsOverride(t *testing.T) {
	fx := newFixture()
	require.NoError(t, fx.store.SetOverride(context.Background(), "t-1", "emp-1", "2024-03",
		[]byte(`{"allowances": [{"name": "Bonus", "type": "fixed", "value": 500}], "deductions": []}`)))

	result, err := fx.service.Generate(context.Background(), hrActor, GenerateInput{
		PayPeriod:   "2024-03",
		EmployeeIDs: []string{"emp-1"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.Generated)

	record := result.Records[0]
	require.True(t, record.TotalAllowances.Equal(decimal.NewFromInt(500)), "allowances = %s", record.TotalAllowances)
	require.True(t, record.TotalDeductions.IsZero(), "override deductions should replace the default")
	require.True(t, record.NetSalary.Equal(decimal.NewFromInt(1500)), "net = %s", record.NetSalary)
}

func TestGenerateLeavesProcessedRecordsAlone(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	first, err := fx.service.Generate(ctx, hrActor, GenerateInput{PayPeriod: "2024-03", EmployeeIDs: []string{"emp-1"}})
	require.NoError(t, err)
	id := first.Records[0].ID

	_, err = fx.service.AdvanceStatus(ctx, hrActor, id, StatusInput{Status: StatusProcessed})
	require.NoError(t, err)

	second, err := fx.service.Generate(ctx, hrActor, GenerateInput{PayPeriod: "2024-03", EmployeeIDs: []string{"emp-1"}})
	require.NoError(t, err)
	require.Equal(t, 0, second.Generated)
	require.Equal(t, 1, second.Skipped)
}

func TestGenerateRejectsMalformedPeriod(t *testing.T) {
	fx := newFixture()
	for _, period := range []string{"2024-13", "2024-1", "March 2024", ""} {
		_, err := fx.service.Generate(context.Background(), hrActor, GenerateInput{PayPeriod: period})
		require.ErrorIs(t, err, ErrInvalidPeriod, "period %q", period)
	}
}

func TestStatusTransitionTable(t *testing.T) {
	tests := []struct {
		from    string
		to      string
		noop    bool
		wantErr bool
	}{
		{from: StatusDraft, to: StatusProcessed},
		{from: StatusProcessed, to: StatusPaid},
		{from: StatusDraft, to: StatusPaid, wantErr: true},
		{from: StatusPaid, to: StatusDraft, wantErr: true},
		{from: StatusPaid, to: StatusProcessed, wantErr: true},
		{from: StatusProcessed, to: StatusDraft, wantErr: true},
		{from: StatusDraft, to: StatusDraft, noop: true},
		{from: StatusProcessed, to: StatusProcessed, noop: true},
		{from: StatusPaid, to: StatusPaid, noop: true},
	}

	for _, tt := range tests {
		t.Run(tt.from+"_to_"+tt.to, func(t *testing.T) {
			noop, err := nextStatus(tt.from, tt.to)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidTransition)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.noop, noop)
		})
	}
}

func TestAdvanceStatusLifecycle(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	result, err := fx.service.Generate(ctx, hrActor, GenerateInput{PayPeriod: "2024-04", EmployeeIDs: []string{"emp-1"}})
	require.NoError(t, err)
	id := result.Records[0].ID

	// Same-status update is an idempotent no-op.
	unchanged, err := fx.service.AdvanceStatus(ctx, hrActor, id, StatusInput{Status: StatusDraft})
	require.NoError(t, err)
	require.Equal(t, StatusDraft, unchanged.Status)

	// Skipping processed is rejected.
	_, err = fx.service.AdvanceStatus(ctx, hrActor, id, StatusInput{Status: StatusPaid, PaymentMethod: "bank"})
	require.ErrorIs(t, err, ErrInvalidTransition)

	processed, err := fx.service.AdvanceStatus(ctx, hrActor, id, StatusInput{Status: StatusProcessed})
	require.NoError(t, err)
	require.Equal(t, StatusProcessed, processed.Status)

	// Paying without a method is rejected.
	_, err = fx.service.AdvanceStatus(ctx, hrActor, id, StatusInput{Status: StatusPaid})
	require.ErrorIs(t, err, ErrPaymentDetailsRequired)

	paid, err := fx.service.AdvanceStatus(ctx, hrActor, id, StatusInput{
		Status:           StatusPaid,
		PaymentMethod:    "bank_transfer",
		PaymentReference: "TX-123",
	})
	require.NoError(t, err)
	require.Equal(t, StatusPaid, paid.Status)
	require.Equal(t, "user-hr", paid.PaidByUserID)
	require.NotNil(t, paid.PaidAt)

	// Paid is terminal.
	_, err = fx.service.AdvanceStatus(ctx, hrActor, id, StatusInput{Status: StatusProcessed})
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestListRecordsScoping(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	_, err := fx.service.Generate(ctx, hrActor, GenerateInput{PayPeriod: "2024-05"})
	require.NoError(t, err)

	own, err := fx.service.ListRecords(ctx, employeeActor, ListFilter{PayPeriod: "2024-05"})
	require.NoError(t, err)
	require.Len(t, own, 1)
	require.Equal(t, "emp-1", own[0].EmployeeID)

	all, err := fx.service.ListRecords(ctx, hrActor, ListFilter{PayPeriod: "2024-05"})
	require.NoError(t, err)
	require.Len(t, all, 2)
}
