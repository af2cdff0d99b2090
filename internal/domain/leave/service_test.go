package leave

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domainauth "hrms/internal/domain/auth"
)

type fakeStore struct {
	requests map[string]Request
	nextID   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{requests: map[string]Request{}}
}

func (f *fakeStore) Request(_ context.Context, tenantID, id string) (Request, error) {
	r, ok := f.requests[id]
	if !ok || r.TenantID != tenantID {
		return Request{}, ErrNotFound
	}
	return r, nil
}

func (f *fakeStore) List(_ context.Context, tenantID string, filter ListFilter) ([]Request, error) {
	var out []Request
	for _, r := range f.requests {
		if r.TenantID != tenantID {
			continue
		}
		if filter.EmployeeID != "" && r.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeStore) Create(_ context.Context, request Request) (Request, error) {
	f.nextID++
	request.ID = fmt.Sprintf("req-%d", f.nextID)
	request.CreatedAt = time.Now()
	request.UpdatedAt = request.CreatedAt
	f.requests[request.ID] = request
	return request, nil
}

func (f *fakeStore) Update(_ context.Context, request Request) (Request, error) {
	if _, ok := f.requests[request.ID]; !ok {
		return Request{}, ErrNotFound
	}
	request.UpdatedAt = time.Now()
	f.requests[request.ID] = request
	return request, nil
}

func (f *fakeStore) SetStatus(_ context.Context, tenantID, id, status, approverID string) (Request, error) {
	r, ok := f.requests[id]
	if !ok || r.TenantID != tenantID {
		return Request{}, ErrNotFound
	}
	r.Status = status
	r.ApproverID = approverID
	f.requests[id] = r
	return r, nil
}

func (f *fakeStore) HasOverlap(_ context.Context, tenantID, employeeID string, start, end time.Time, excludeID string) (bool, error) {
	for _, r := range f.requests {
		if r.TenantID != tenantID || r.EmployeeID != employeeID || r.ID == excludeID {
			continue
		}
		if r.Status != StatusPending && r.Status != StatusApproved {
			continue
		}
		if !r.StartDate.After(end) && !r.EndDate.Before(start) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) Usage(_ context.Context, tenantID, employeeID string, asOf time.Time) (Usage, error) {
	usage := Usage{
		UsedDaysByType:         map[string]int{},
		UsedDaysByTypePrevYear: map[string]int{},
	}
	for _, r := range f.requests {
		if r.TenantID != tenantID || r.EmployeeID != employeeID || r.Status != StatusApproved {
			continue
		}
		leaveType := CanonicalType(r.LeaveType)
		switch r.StartDate.Year() {
		case asOf.Year():
			usage.UsedDaysByType[leaveType] += r.DaysRequested
		case asOf.Year() - 1:
			usage.UsedDaysByTypePrevYear[leaveType] += r.DaysRequested
		}
	}
	return usage, nil
}

func (f *fakeStore) WithEmployeeLock(_ context.Context, _, _ string, fn func(StoreAPI) error) error {
	return fn(f)
}

type fakeDirectory struct {
	employees map[string]EmployeeInfo
	settings  []byte
}

func (f *fakeDirectory) Employee(_ context.Context, _, employeeID string) (EmployeeInfo, error) {
	e, ok := f.employees[employeeID]
	if !ok {
		return EmployeeInfo{}, ErrNotFound
	}
	return e, nil
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

type fakePerms struct {
	grants    map[string][]string
	approvers []string
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
	return f.approvers, nil
}

type fixture struct {
	service *Service
	store   *fakeStore
	dir     *fakeDirectory
}

func newFixture() fixture {
	store := newFakeStore()
	dir := &fakeDirectory{
		employees: map[string]EmployeeInfo{
			"emp-1": {ID: "emp-1", UserID: "user-1", ManagerID: "emp-2", HireDate: date(2020, time.January, 1)},
			"emp-2": {ID: "emp-2", UserID: "user-2", HireDate: date(2018, time.January, 1)},
		},
	}
	perms := &fakePerms{
		grants: map[string][]string{
			"role-hr": {domainauth.PermLeaveApprove, domainauth.PermLeaveRead},
		},
		approvers: []string{"user-hr"},
	}
	return fixture{service: NewService(store, dir, perms), store: store, dir: dir}
}

var (
	employeeActor = domainauth.UserContext{UserID: "user-1", TenantID: "t-1", RoleID: "role-emp"}
	managerActor  = domainauth.UserContext{UserID: "user-2", TenantID: "t-1", RoleID: "role-emp"}
	hrActor       = domainauth.UserContext{UserID: "user-hr", TenantID: "t-1", RoleID: "role-hr"}
)

func TestCreateRequestNoDoubleBooking(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	first, err := fx.service.CreateRequest(ctx, employeeActor, CreateInput{
		LeaveType: TypeAnnual,
		StartDate: date(2024, time.January, 10),
		EndDate:   date(2024, time.January, 15),
	})
	require.NoError(t, err)
	require.Equal(t, StatusPending, first.Request.Status)
	require.Equal(t, 4, first.Request.DaysRequested)
	require.Equal(t, []string{"user-2"}, first.NotifyUserIDs, "manager should be notified")

	_, err = fx.service.CreateRequest(ctx, employeeActor, CreateInput{
		LeaveType: TypeAnnual,
		StartDate: date(2024, time.January, 12),
		EndDate:   date(2024, time.January, 20),
	})
	require.ErrorIs(t, err, ErrOverlap)

	_, err = fx.service.CreateRequest(ctx, employeeActor, CreateInput{
		LeaveType: TypeAnnual,
		StartDate: date(2024, time.January, 16),
		EndDate:   date(2024, time.January, 18),
	})
	require.NoError(t, err, "adjacent non-overlapping range must succeed")
}

func TestCreateRequestInsufficientBalanceBoundary(t *testing.T) {
	fx := newFixture()
	fx.dir.employees["emp-1"] = EmployeeInfo{
		ID: "emp-1", UserID: "user-1", HireDate: date(2023, time.June, 1),
	}

	// Default policy accrues annual monthly: as of January the prorated
	// entitlement is round(20/12) = 2, one short of the 3 days asked.
	_, err := fx.service.CreateRequest(context.Background(), employeeActor, CreateInput{
		LeaveType: TypeAnnual,
		StartDate: date(2024, time.January, 8),
		EndDate:   date(2024, time.January, 10),
	})
	require.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestCreateRequestUnpaidSkipsBalanceCheck(t *testing.T) {
	fx := newFixture()
	fx.dir.employees["emp-1"] = EmployeeInfo{
		ID: "emp-1", UserID: "user-1", HireDate: date(2023, time.June, 1),
	}

	result, err := fx.service.CreateRequest(context.Background(), employeeActor, CreateInput{
		LeaveType: TypeUnpaid,
		StartDate: date(2024, time.January, 8),
		EndDate:   date(2024, time.January, 19),
	})
	require.NoError(t, err)
	require.Equal(t, 10, result.Request.DaysRequested)
}

func TestCreateRequestValidation(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	_, err := fx.service.CreateRequest(ctx, employeeActor, CreateInput{
		LeaveType: "sabbatical",
		StartDate: date(2024, time.January, 8),
		EndDate:   date(2024, time.January, 9),
	})
	require.ErrorIs(t, err, ErrInvalidType)

	_, err = fx.service.CreateRequest(ctx, employeeActor, CreateInput{
		LeaveType: TypeAnnual,
		StartDate: date(2024, time.January, 9),
		EndDate:   date(2024, time.January, 8),
	})
	require.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = fx.service.CreateRequest(ctx, employeeActor, CreateInput{
		LeaveType: TypeAnnual,
		StartDate: date(2024, time.January, 6),
		EndDate:   date(2024, time.January, 7),
	})
	require.ErrorIs(t, err, ErrNoWorkingDays, "weekend-only range has no working days")
}

func TestApproveRequest(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	created, err := fx.service.CreateRequest(ctx, employeeActor, CreateInput{
		LeaveType: TypeAnnual,
		StartDate: date(2024, time.February, 5),
		EndDate:   date(2024, time.February, 7),
	})
	require.NoError(t, err)
	id := created.Request.ID

	// The owner cannot approve their own request.
	_, err = fx.service.ApproveRequest(ctx, employeeActor, id)
	require.ErrorIs(t, err, ErrNotAllowed)

	decision, err := fx.service.ApproveRequest(ctx, managerActor, id)
	require.NoError(t, err)
	require.Equal(t, StatusApproved, decision.Request.Status)
	require.Equal(t, "user-2", decision.Request.ApproverID)
	require.Equal(t, "user-1", decision.EmployeeUserID)

	// Approving twice fails: the request is no longer pending.
	_, err = fx.service.ApproveRequest(ctx, hrActor, id)
	require.ErrorIs(t, err, ErrNotPending)
}

func TestRejectRequestByPermissionHolder(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	created, err := fx.service.CreateRequest(ctx, employeeActor, CreateInput{
		LeaveType: TypeSick,
		StartDate: date(2024, time.March, 4),
		EndDate:   date(2024, time.March, 5),
	})
	require.NoError(t, err)

	decision, err := fx.service.RejectRequest(ctx, hrActor, created.Request.ID)
	require.NoError(t, err)
	require.Equal(t, StatusRejected, decision.Request.Status)
	require.Equal(t, "user-hr", decision.Request.ApproverID)
}

func TestCancelRequest(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	created, err := fx.service.CreateRequest(ctx, employeeActor, CreateInput{
		LeaveType: TypeAnnual,
		StartDate: date(2030, time.June, 3),
		EndDate:   date(2030, time.June, 4),
	})
	require.NoError(t, err)
	id := created.Request.ID

	decision, err := fx.service.CancelRequest(ctx, employeeActor, id)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, decision.Request.Status)

	_, err = fx.service.CancelRequest(ctx, employeeActor, id)
	require.ErrorIs(t, err, ErrAlreadyCancelled)
}

func TestCancelApprovedRequestAfterStart(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	// Seed an already-approved request in the past directly.
	past, err := fx.store.Create(ctx, Request{
		TenantID:      "t-1",
		EmployeeID:    "emp-1",
		LeaveType:     TypeAnnual,
		StartDate:     date(2020, time.June, 1),
		EndDate:       date(2020, time.June, 3),
		DaysRequested: 3,
		Status:        StatusApproved,
	})
	require.NoError(t, err)

	_, err = fx.service.CancelRequest(ctx, employeeActor, past.ID)
	require.ErrorIs(t, err, ErrTooLateToCancel)
}

func TestUpdateRequestOnlyWhilePending(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	created, err := fx.service.CreateRequest(ctx, employeeActor, CreateInput{
		LeaveType: TypeAnnual,
		StartDate: date(2024, time.April, 1),
		EndDate:   date(2024, time.April, 2),
	})
	require.NoError(t, err)
	id := created.Request.ID

	updated, err := fx.service.UpdateRequest(ctx, employeeActor, id, UpdateInput{
		LeaveType: TypeAnnual,
		StartDate: date(2024, time.April, 1),
		EndDate:   date(2024, time.April, 3),
	})
	require.NoError(t, err)
	require.Equal(t, 3, updated.DaysRequested)

	_, err = fx.service.ApproveRequest(ctx, managerActor, id)
	require.NoError(t, err)

	_, err = fx.service.UpdateRequest(ctx, employeeActor, id, UpdateInput{
		LeaveType: TypeAnnual,
		StartDate: date(2024, time.April, 1),
		EndDate:   date(2024, time.April, 4),
	})
	require.ErrorIs(t, err, ErrNotPending)
}

func TestListRequestsScoping(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	_, err := fx.service.CreateRequest(ctx, employeeActor, CreateInput{
		LeaveType: TypeAnnual,
		StartDate: date(2024, time.May, 6),
		EndDate:   date(2024, time.May, 7),
	})
	require.NoError(t, err)
	_, err = fx.service.CreateRequest(ctx, managerActor, CreateInput{
		LeaveType: TypeSick,
		StartDate: date(2024, time.May, 6),
		EndDate:   date(2024, time.May, 7),
	})
	require.NoError(t, err)

	own, err := fx.service.ListRequests(ctx, employeeActor, ListFilter{})
	require.NoError(t, err)
	require.Len(t, own, 1)
	require.Equal(t, "emp-1", own[0].EmployeeID)

	all, err := fx.service.ListRequests(ctx, hrActor, ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestBalancesReflectApprovedUsage(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	created, err := fx.service.CreateRequest(ctx, employeeActor, CreateInput{
		LeaveType: TypeAnnual,
		StartDate: date(2024, time.July, 1),
		EndDate:   date(2024, time.July, 3),
	})
	require.NoError(t, err)
	_, err = fx.service.ApproveRequest(ctx, managerActor, created.Request.ID)
	require.NoError(t, err)

	balances, err := fx.service.Balances(ctx, employeeActor, "", date(2024, time.December, 1))
	require.NoError(t, err)

	annual := balances[TypeAnnual]
	require.Equal(t, 3, annual.Used)
	require.Equal(t, 20, annual.Entitlement)
	require.Equal(t, 22, annual.Remaining) // 20 + 5 carry - 3 used
}
