package v1

import (
	"context"
	"slices"
	"sync"

	"github.com/duynhne/yoga-service/internal/core/domain"
)

type fakeUsers struct {
	mu     sync.Mutex
	rows   map[int64]domain.UserRow
	nextID int64
	err    error
}

func newFakeUsers(rows ...domain.UserRow) *fakeUsers {
	f := &fakeUsers{rows: map[int64]domain.UserRow{}}
	for _, row := range rows {
		f.rows[row.ID] = row
		f.nextID = max(f.nextID, row.ID)
	}
	return f
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*domain.UserRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	row, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*domain.UserRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, row := range f.rows {
		if row.Email == email {
			return &row, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	row, err := f.GetByEmail(ctx, email)
	return row != nil, err
}

func (f *fakeUsers) Create(_ context.Context, user domain.UserRow) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.Email == user.Email {
			return 0, domain.ErrDuplicateEmail
		}
	}
	f.nextID++
	user.ID = f.nextID
	f.rows[user.ID] = user
	return user.ID, nil
}

func (f *fakeUsers) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, id)
	return nil
}

type fakeTeachers struct {
	rows map[int64]domain.TeacherRow
}

func newFakeTeachers(ids ...int64) *fakeTeachers {
	f := &fakeTeachers{rows: map[int64]domain.TeacherRow{}}
	for _, id := range ids {
		f.rows[id] = domain.TeacherRow{ID: id, FirstName: "Margot", LastName: "DELAHAYE"}
	}
	return f
}

func (f *fakeTeachers) List(context.Context) ([]domain.TeacherRow, error) {
	out := make([]domain.TeacherRow, 0, len(f.rows))
	for _, row := range f.rows {
		out = append(out, row)
	}
	slices.SortFunc(out, func(a, b domain.TeacherRow) int { return int(a.ID - b.ID) })
	return out, nil
}

func (f *fakeTeachers) GetByID(_ context.Context, id int64) (*domain.TeacherRow, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

// fakeSessions keeps rosters in memory and enforces the version check the
// way the SQL stores do.
type fakeSessions struct {
	mu     sync.Mutex
	rows   map[int64]domain.SessionRow
	nextID int64
	saves  int
	// beforeSave runs with the lock released before every SaveRoster.
	beforeSave func(call int)
	// users, when set, stands in for the participate foreign key.
	users *fakeUsers
}

func newFakeSessions(rows ...domain.SessionRow) *fakeSessions {
	f := &fakeSessions{rows: map[int64]domain.SessionRow{}}
	for _, row := range rows {
		f.rows[row.ID] = row
		f.nextID = max(f.nextID, row.ID)
	}
	return f
}

func (f *fakeSessions) List(context.Context) ([]domain.SessionRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.SessionRow, 0, len(f.rows))
	for _, row := range f.rows {
		out = append(out, cloneSession(row))
	}
	slices.SortFunc(out, func(a, b domain.SessionRow) int { return int(a.ID - b.ID) })
	return out, nil
}

func (f *fakeSessions) GetByID(_ context.Context, id int64) (*domain.SessionRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	row = cloneSession(row)
	return &row, nil
}

func (f *fakeSessions) Create(_ context.Context, session domain.SessionRow) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	session.ID = f.nextID
	session.Users = nil
	session.RosterVersion = 0
	f.rows[session.ID] = session
	return session.ID, nil
}

func (f *fakeSessions) Update(_ context.Context, session domain.SessionRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.rows[session.ID]
	if !ok {
		return nil
	}
	stored.Name = session.Name
	stored.Description = session.Description
	stored.Date = session.Date
	stored.TeacherID = session.TeacherID
	f.rows[session.ID] = stored
	return nil
}

func (f *fakeSessions) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, id)
	return nil
}

func (f *fakeSessions) SaveRoster(_ context.Context, sessionID, expectedVersion int64, userIDs []int64) error {
	f.mu.Lock()
	f.saves++
	call := f.saves
	hook := f.beforeSave
	f.mu.Unlock()

	if hook != nil {
		hook(call)
	}

	if f.users != nil {
		for _, userID := range userIDs {
			if row, _ := f.users.GetByID(context.Background(), userID); row == nil {
				return domain.ErrUnknownParticipant
			}
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.rows[sessionID]
	if !ok || stored.RosterVersion != expectedVersion {
		return domain.ErrStaleRoster
	}
	stored.Users = slices.Clone(userIDs)
	stored.RosterVersion++
	f.rows[sessionID] = stored
	return nil
}

// appendDirect mutates a roster as a competing writer would.
func (f *fakeSessions) appendDirect(sessionID, userID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := f.rows[sessionID]
	stored.Users = append(slices.Clone(stored.Users), userID)
	stored.RosterVersion++
	f.rows[sessionID] = stored
}

func (f *fakeSessions) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

func cloneSession(row domain.SessionRow) domain.SessionRow {
	row.Users = slices.Clone(row.Users)
	return row
}
