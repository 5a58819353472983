package service_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/leave-service/internal/domain"
	"github.com/spec-kit/leave-service/internal/ledger"
	"github.com/spec-kit/leave-service/internal/repository"
	"github.com/spec-kit/leave-service/internal/service"
	util "github.com/spec-kit/leave-service/pkg/util"
)

// =============================================================================
// FAKES
// =============================================================================

type fakeUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return fmt.Errorf("duplicate email %s", user.Email)
		}
	}
	f.seq++
	user.ID = fmt.Sprintf("user-%d", f.seq)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) BalanceForUpdate(_ context.Context, _ pgx.Tx, id string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return 0, pgx.ErrNoRows
	}
	return user.LeaveBalance, nil
}

func (f *fakeUserRepo) SetBalance(_ context.Context, _ pgx.Tx, id string, balance int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.LeaveBalance = balance
	return nil
}

func (f *fakeUserRepo) balance(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id].LeaveBalance
}

type fakeLeaveRepo struct {
	mu     sync.Mutex
	seq    int
	leaves map[string]*domain.LeaveRequest
}

func newFakeLeaveRepo() *fakeLeaveRepo {
	return &fakeLeaveRepo{leaves: make(map[string]*domain.LeaveRequest)}
}

func (f *fakeLeaveRepo) Create(_ context.Context, leave *domain.LeaveRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	leave.ID = fmt.Sprintf("leave-%d", f.seq)
	clone := *leave
	f.leaves[leave.ID] = &clone
	return nil
}

func (f *fakeLeaveRepo) GetByID(_ context.Context, id string) (*domain.LeaveRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	leave, ok := f.leaves[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *leave
	return &clone, nil
}

func (f *fakeLeaveRepo) GetForUpdate(ctx context.Context, _ pgx.Tx, id string) (*domain.LeaveRequest, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeLeaveRepo) MarkReviewed(_ context.Context, _ pgx.Tx, id string, status domain.LeaveStatus, reviewerID string, reviewedAt time.Time, comment string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	leave, ok := f.leaves[id]
	if !ok || leave.Status != domain.LeaveStatusPending {
		return pgx.ErrNoRows
	}
	leave.Status = status
	leave.ReviewerID = &reviewerID
	leave.ReviewedAt = &reviewedAt
	leave.ReviewComment = &comment
	return nil
}

func (f *fakeLeaveRepo) ListByEmployee(_ context.Context, employeeID string) ([]domain.LeaveRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.LeaveRequest
	for _, leave := range f.leaves {
		if leave.EmployeeID == employeeID {
			result = append(result, *leave)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].AppliedAt.After(result[j].AppliedAt) })
	return result, nil
}

func (f *fakeLeaveRepo) ListPending(_ context.Context) ([]domain.LeaveRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.LeaveRequest
	for _, leave := range f.leaves {
		if leave.Status == domain.LeaveStatusPending {
			result = append(result, *leave)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].AppliedAt.Before(result[j].AppliedAt) })
	return result, nil
}

func (f *fakeLeaveRepo) ListRecent(_ context.Context, limit int) ([]domain.LeaveRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.LeaveRequest
	for _, leave := range f.leaves {
		result = append(result, *leave)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].AppliedAt.After(result[j].AppliedAt) })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (f *fakeLeaveRepo) status(id string) domain.LeaveStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.leaves[id].Status
}

// fakeTxManager serializes units of work with a mutex, standing in for the
// row locks a real transaction would take.
type fakeTxManager struct {
	mu sync.Mutex
}

func (f *fakeTxManager) InTx(ctx context.Context, fn repository.TxFunc) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(ctx, nil)
}

// =============================================================================
// TEST SETUP
// =============================================================================

type testEnv struct {
	svc      *service.LeaveService
	users    *fakeUserRepo
	leaves   *fakeLeaveRepo
	employee *domain.User
	hr       *domain.User
}

func newTestEnv(t *testing.T, employeeBalance int) *testEnv {
	t.Helper()
	users := newFakeUserRepo()
	leaves := newFakeLeaveRepo()

	employee := &domain.User{Name: "Eve", Email: "eve@example.com", Role: domain.RoleEmployee, LeaveBalance: employeeBalance}
	require.NoError(t, users.Create(context.Background(), employee))
	hr := &domain.User{Name: "Harriet", Email: "harriet@example.com", Role: domain.RoleHR, LeaveBalance: 20}
	require.NoError(t, users.Create(context.Background(), hr))

	svc := service.NewLeaveService(service.LeaveDependencies{
		UserRepo:  users,
		LeaveRepo: leaves,
		Ledger:    ledger.New(users),
		TxManager: &fakeTxManager{},
	})
	return &testEnv{svc: svc, users: users, leaves: leaves, employee: employee, hr: hr}
}

func submitDays(t *testing.T, env *testEnv, start, end string) *domain.LeaveRequest {
	t.Helper()
	leave, err := env.svc.Submit(context.Background(), env.employee.ID, service.SubmitInput{
		StartDate: start,
		EndDate:   end,
		LeaveType: "Vacation",
	})
	require.NoError(t, err)
	return leave
}

// =============================================================================
// SUBMIT
// =============================================================================

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a pending request without touching the balance", func(t *testing.T) {
		env := newTestEnv(t, 10)

		leave := submitDays(t, env, "2024-03-01", "2024-03-05")

		assert.Equal(t, domain.LeaveStatusPending, leave.Status)
		assert.Equal(t, 5, leave.Days)
		assert.Equal(t, env.employee.ID, leave.EmployeeID)
		assert.False(t, leave.AppliedAt.IsZero())
		assert.Nil(t, leave.ReviewerID)
		assert.Equal(t, 10, env.users.balance(env.employee.ID))
	})

	t.Run("defaults the leave type", func(t *testing.T) {
		env := newTestEnv(t, 10)
		leave, err := env.svc.Submit(ctx, env.employee.ID, service.SubmitInput{
			StartDate: "2024-03-01",
			EndDate:   "2024-03-01",
		})
		require.NoError(t, err)
		assert.Equal(t, "Vacation", leave.LeaveType)
	})

	t.Run("rejects malformed dates", func(t *testing.T) {
		env := newTestEnv(t, 10)
		_, err := env.svc.Submit(ctx, env.employee.ID, service.SubmitInput{
			StartDate: "03/01/2024",
			EndDate:   "2024-03-05",
		})
		require.Error(t, err)
		assert.True(t, util.HasCode(err, util.CodeValidationFailed))
	})

	t.Run("rejects inverted ranges as validation errors", func(t *testing.T) {
		env := newTestEnv(t, 10)
		_, err := env.svc.Submit(ctx, env.employee.ID, service.SubmitInput{
			StartDate: "2024-03-05",
			EndDate:   "2024-03-01",
		})
		require.Error(t, err)
		assert.True(t, util.HasCode(err, util.CodeValidationFailed))
	})

	t.Run("insufficient balance persists nothing", func(t *testing.T) {
		env := newTestEnv(t, 3)
		_, err := env.svc.Submit(ctx, env.employee.ID, service.SubmitInput{
			StartDate: "2024-03-01",
			EndDate:   "2024-03-05",
		})
		require.Error(t, err)
		assert.True(t, util.HasCode(err, util.CodeInsufficientBalance))

		domainErr := util.ToDomainError(err)
		assert.Equal(t, 3, domainErr.Details["balance"])
		assert.Equal(t, 5, domainErr.Details["requested"])

		assert.Equal(t, 3, env.users.balance(env.employee.ID))
		pending, err := env.svc.ListPendingForReview(ctx)
		require.NoError(t, err)
		assert.Empty(t, pending)
	})

	t.Run("unknown employee", func(t *testing.T) {
		env := newTestEnv(t, 10)
		_, err := env.svc.Submit(ctx, "ghost", service.SubmitInput{
			StartDate: "2024-03-01",
			EndDate:   "2024-03-02",
		})
		require.Error(t, err)
		assert.True(t, util.HasCode(err, util.CodeNotFound))
	})
}

// =============================================================================
// REVIEW
// =============================================================================

func TestReview(t *testing.T) {
	ctx := context.Background()

	t.Run("approve debits the balance and stamps the review", func(t *testing.T) {
		env := newTestEnv(t, 10)
		leave := submitDays(t, env, "2024-03-01", "2024-03-05")

		reviewed, err := env.svc.Review(ctx, env.hr, leave.ID, domain.ReviewActionApprove, "enjoy")
		require.NoError(t, err)

		assert.Equal(t, domain.LeaveStatusApproved, reviewed.Status)
		require.NotNil(t, reviewed.ReviewerID)
		assert.Equal(t, env.hr.ID, *reviewed.ReviewerID)
		require.NotNil(t, reviewed.ReviewedAt)
		require.NotNil(t, reviewed.ReviewComment)
		assert.Equal(t, "enjoy", *reviewed.ReviewComment)
		assert.Equal(t, 5, env.users.balance(env.employee.ID))
	})

	t.Run("reject stamps the review without balance effect", func(t *testing.T) {
		env := newTestEnv(t, 10)
		leave := submitDays(t, env, "2024-03-01", "2024-03-05")

		reviewed, err := env.svc.Review(ctx, env.hr, leave.ID, domain.ReviewActionReject, "too busy")
		require.NoError(t, err)

		assert.Equal(t, domain.LeaveStatusRejected, reviewed.Status)
		assert.Equal(t, 10, env.users.balance(env.employee.ID))
	})

	t.Run("second review fails and does not double debit", func(t *testing.T) {
		env := newTestEnv(t, 10)
		leave := submitDays(t, env, "2024-03-01", "2024-03-05")

		_, err := env.svc.Review(ctx, env.hr, leave.ID, domain.ReviewActionApprove, "")
		require.NoError(t, err)

		_, err = env.svc.Review(ctx, env.hr, leave.ID, domain.ReviewActionApprove, "")
		require.Error(t, err)
		assert.True(t, util.HasCode(err, util.CodeIllegalTransition))
		assert.Equal(t, 5, env.users.balance(env.employee.ID))

		_, err = env.svc.Review(ctx, env.hr, leave.ID, domain.ReviewActionReject, "")
		require.Error(t, err)
		assert.True(t, util.HasCode(err, util.CodeIllegalTransition))
	})

	t.Run("approve aborts when balance shrank since submission", func(t *testing.T) {
		env := newTestEnv(t, 10)
		first := submitDays(t, env, "2024-03-01", "2024-03-06")  // 6 days
		second := submitDays(t, env, "2024-04-01", "2024-04-06") // 6 days

		_, err := env.svc.Review(ctx, env.hr, first.ID, domain.ReviewActionApprove, "")
		require.NoError(t, err)
		assert.Equal(t, 4, env.users.balance(env.employee.ID))

		_, err = env.svc.Review(ctx, env.hr, second.ID, domain.ReviewActionApprove, "")
		require.Error(t, err)
		assert.True(t, util.HasCode(err, util.CodeInsufficientBalance))

		// the request stays pending and the balance is untouched
		assert.Equal(t, domain.LeaveStatusPending, env.leaves.status(second.ID))
		assert.Equal(t, 4, env.users.balance(env.employee.ID))

		// rejecting it afterwards is still possible
		_, err = env.svc.Review(ctx, env.hr, second.ID, domain.ReviewActionReject, "not enough days")
		require.NoError(t, err)
	})

	t.Run("employees cannot review", func(t *testing.T) {
		env := newTestEnv(t, 10)
		leave := submitDays(t, env, "2024-03-01", "2024-03-05")

		_, err := env.svc.Review(ctx, env.employee, leave.ID, domain.ReviewActionApprove, "")
		require.Error(t, err)
		assert.True(t, util.HasCode(err, util.CodeForbidden))
		assert.Equal(t, domain.LeaveStatusPending, env.leaves.status(leave.ID))
	})

	t.Run("unknown action", func(t *testing.T) {
		env := newTestEnv(t, 10)
		leave := submitDays(t, env, "2024-03-01", "2024-03-05")

		_, err := env.svc.Review(ctx, env.hr, leave.ID, domain.ReviewAction("escalate"), "")
		require.Error(t, err)
		assert.True(t, util.HasCode(err, util.CodeValidationFailed))
		assert.Equal(t, domain.LeaveStatusPending, env.leaves.status(leave.ID))
	})

	t.Run("unknown request", func(t *testing.T) {
		env := newTestEnv(t, 10)
		_, err := env.svc.Review(ctx, env.hr, "leave-404", domain.ReviewActionApprove, "")
		require.Error(t, err)
		assert.True(t, util.HasCode(err, util.CodeNotFound))
	})
}

func TestReviewConcurrentApprovals(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 6)

	// two pending requests that together exceed the balance
	first := submitDays(t, env, "2024-03-01", "2024-03-04")  // 4 days
	second := submitDays(t, env, "2024-04-01", "2024-04-04") // 4 days

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []string{first.ID, second.ID} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = env.svc.Review(ctx, env.hr, id, domain.ReviewActionApprove, "")
		}(i, id)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.True(t, util.HasCode(err, util.CodeInsufficientBalance))
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one approval must win")
	assert.Equal(t, 2, env.users.balance(env.employee.ID))
	assert.GreaterOrEqual(t, env.users.balance(env.employee.ID), 0)
}

// =============================================================================
// READS
// =============================================================================

func TestGetForActor(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 10)
	leave := submitDays(t, env, "2024-03-01", "2024-03-05")

	other := &domain.User{Name: "Oscar", Email: "oscar@example.com", Role: domain.RoleEmployee, LeaveBalance: 10}
	require.NoError(t, env.users.Create(ctx, other))

	t.Run("owner can read", func(t *testing.T) {
		got, err := env.svc.GetForActor(ctx, env.employee, leave.ID)
		require.NoError(t, err)
		assert.Equal(t, leave.ID, got.ID)
	})

	t.Run("hr can read", func(t *testing.T) {
		got, err := env.svc.GetForActor(ctx, env.hr, leave.ID)
		require.NoError(t, err)
		assert.Equal(t, leave.ID, got.ID)
	})

	t.Run("other employees cannot", func(t *testing.T) {
		_, err := env.svc.GetForActor(ctx, other, leave.ID)
		require.Error(t, err)
		assert.True(t, util.HasCode(err, util.CodeForbidden))
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := env.svc.GetForActor(ctx, env.hr, "leave-404")
		require.Error(t, err)
		assert.True(t, util.HasCode(err, util.CodeNotFound))
	})
}

func TestListOrdering(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 30)

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	seed := func(offset time.Duration, status domain.LeaveStatus) {
		leave := &domain.LeaveRequest{
			EmployeeID: env.employee.ID,
			StartDate:  base,
			EndDate:    base,
			Days:       1,
			LeaveType:  "Vacation",
			Status:     status,
			AppliedAt:  base.Add(offset),
		}
		require.NoError(t, env.leaves.Create(ctx, leave))
	}
	seed(0, domain.LeaveStatusPending)
	seed(time.Hour, domain.LeaveStatusPending)
	seed(2*time.Hour, domain.LeaveStatusApproved)

	t.Run("employee view is newest first", func(t *testing.T) {
		leaves, err := env.svc.ListForEmployee(ctx, env.employee.ID)
		require.NoError(t, err)
		require.Len(t, leaves, 3)
		for i := 1; i < len(leaves); i++ {
			assert.False(t, leaves[i].AppliedAt.After(leaves[i-1].AppliedAt))
		}
	})

	t.Run("review queue is oldest first and pending only", func(t *testing.T) {
		leaves, err := env.svc.ListPendingForReview(ctx)
		require.NoError(t, err)
		require.Len(t, leaves, 2)
		assert.True(t, leaves[0].AppliedAt.Before(leaves[1].AppliedAt))
		for _, leave := range leaves {
			assert.Equal(t, domain.LeaveStatusPending, leave.Status)
		}
	})

	t.Run("recent view honors the limit", func(t *testing.T) {
		leaves, err := env.svc.ListRecent(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, leaves, 2)
		assert.True(t, leaves[0].AppliedAt.After(leaves[1].AppliedAt))
	})
}

// =============================================================================
// END TO END
// =============================================================================

func TestLeaveLifecycle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 10)

	leave := submitDays(t, env, "2024-03-01", "2024-03-05")
	assert.Equal(t, 5, leave.Days)
	assert.Equal(t, domain.LeaveStatusPending, leave.Status)
	assert.Equal(t, 10, env.users.balance(env.employee.ID))

	approved, err := env.svc.Review(ctx, env.hr, leave.ID, domain.ReviewActionApprove, "ok")
	require.NoError(t, err)
	assert.Equal(t, domain.LeaveStatusApproved, approved.Status)
	assert.Equal(t, 5, env.users.balance(env.employee.ID))
	require.NotNil(t, approved.ReviewerID)
	require.NotNil(t, approved.ReviewedAt)

	_, err = env.svc.Review(ctx, env.hr, leave.ID, domain.ReviewActionApprove, "again")
	require.Error(t, err)
	assert.True(t, util.HasCode(err, util.CodeIllegalTransition))
	assert.Equal(t, 5, env.users.balance(env.employee.ID))
}
