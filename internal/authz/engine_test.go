package authz

import (
	"context"
	"reflect"
	"testing"
)

type stubPropertySource struct {
	ids  []int64
	err  error
	hits int
}

func (s *stubPropertySource) ListPropertyIDs(ctx context.Context) ([]int64, error) {
	s.hits++
	return s.ids, s.err
}

type stubAssignmentSource struct {
	byUser map[int64][]int64
	err    error
	hits   int
}

func (s *stubAssignmentSource) PropertyIDsForUser(ctx context.Context, userID int64) ([]int64, error) {
	s.hits++
	return s.byUser[userID], s.err
}

func newTestEngine(props *stubPropertySource, assigns *stubAssignmentSource) *Engine {
	return NewEngine(NewScopeResolver(props, assigns))
}

func TestDecideMatrix(t *testing.T) {
	cases := []struct {
		name    string
		role    Role
		inScope bool
		action  Action
		allowed bool
		reason  string
	}{
		{"admin read scoped", RoleAdmin, false, ActionReadScoped, true, ""},
		{"admin write scoped", RoleAdmin, false, ActionWriteScoped, true, ""},
		{"admin read global", RoleAdmin, false, ActionReadGlobal, true, ""},
		{"admin write global", RoleAdmin, false, ActionWriteGlobal, true, ""},

		{"operator read scoped", RoleOperator, false, ActionReadScoped, true, ""},
		{"operator write scoped", RoleOperator, true, ActionWriteScoped, false, ReasonOperatorReadOnly},
		{"operator read global", RoleOperator, false, ActionReadGlobal, false, ReasonAdminRequired},
		{"operator write global", RoleOperator, false, ActionWriteGlobal, false, ReasonAdminRequired},

		{"user read in scope", RoleUser, true, ActionReadScoped, true, ""},
		{"user read out of scope", RoleUser, false, ActionReadScoped, false, ReasonPropertyNotInScope},
		{"user write in scope", RoleUser, true, ActionWriteScoped, true, ""},
		{"user write out of scope", RoleUser, false, ActionWriteScoped, false, ReasonPropertyNotInScope},
		{"user read global", RoleUser, false, ActionReadGlobal, false, ReasonAdminRequired},
		{"user write global", RoleUser, true, ActionWriteGlobal, false, ReasonAdminRequired},

		{"unknown read scoped", RoleUnknown, true, ActionReadScoped, false, ReasonNoAccess},
		{"unknown write scoped", RoleUnknown, true, ActionWriteScoped, false, ReasonNoAccess},
		{"unknown read global", RoleUnknown, false, ActionReadGlobal, false, ReasonNoAccess},
		{"unknown write global", RoleUnknown, false, ActionWriteGlobal, false, ReasonNoAccess},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decision := Decide(tc.role, tc.inScope, tc.action)
			if decision.Allowed != tc.allowed {
				t.Fatalf("expected allowed=%v, got %v", tc.allowed, decision.Allowed)
			}
			if decision.Reason != tc.reason {
				t.Fatalf("expected reason %q, got %q", tc.reason, decision.Reason)
			}
		})
	}
}

func TestDecideDeterministic(t *testing.T) {
	for role := RoleUnknown; role <= RoleUser; role++ {
		for _, inScope := range []bool{false, true} {
			for action := ActionReadScoped; action <= ActionWriteGlobal; action++ {
				first := Decide(role, inScope, action)
				second := Decide(role, inScope, action)
				if first != second {
					t.Fatalf("decision drift for role=%v inScope=%v action=%v: %+v vs %+v", role, inScope, action, first, second)
				}
			}
		}
	}
}

func TestCanPerformUserScopeMembership(t *testing.T) {
	assigns := &stubAssignmentSource{byUser: map[int64][]int64{7: {1, 3}}}
	engine := newTestEngine(&stubPropertySource{ids: []int64{1, 2, 3}}, assigns)
	principal := Principal{ID: 7, Username: "resident", Role: RoleUser}

	decision, err := engine.CanPerform(context.Background(), principal, ActionWriteScoped, ScopedTo(3))
	if err != nil {
		t.Fatalf("can perform: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("expected allow for assigned property, got %+v", decision)
	}

	decision, err = engine.CanPerform(context.Background(), principal, ActionWriteScoped, ScopedTo(2))
	if err != nil {
		t.Fatalf("can perform: %v", err)
	}
	if decision.Allowed || decision.Reason != ReasonPropertyNotInScope {
		t.Fatalf("expected scope denial, got %+v", decision)
	}
}

func TestCanPerformSkipsScopeLookupWhenRoleDecides(t *testing.T) {
	props := &stubPropertySource{ids: []int64{1}}
	assigns := &stubAssignmentSource{byUser: map[int64][]int64{}}
	engine := newTestEngine(props, assigns)

	operator := Principal{ID: 2, Username: "frontdesk", Role: RoleOperator}
	decision, err := engine.CanPerform(context.Background(), operator, ActionWriteScoped, ScopedTo(1))
	if err != nil {
		t.Fatalf("can perform: %v", err)
	}
	if decision.Allowed || decision.Reason != ReasonOperatorReadOnly {
		t.Fatalf("expected operator read-only denial, got %+v", decision)
	}
	if props.hits != 0 || assigns.hits != 0 {
		t.Fatalf("expected no scope lookups, got properties=%d assignments=%d", props.hits, assigns.hits)
	}
}

func TestFilterToScopeIntersectsCandidates(t *testing.T) {
	assigns := &stubAssignmentSource{byUser: map[int64][]int64{7: {1}}}
	engine := newTestEngine(&stubPropertySource{ids: []int64{1, 2}}, assigns)
	principal := Principal{ID: 7, Role: RoleUser}

	allowed, err := engine.FilterToScope(context.Background(), principal, []int64{2})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(allowed) != 0 {
		t.Fatalf("expected empty subset for out-of-scope candidate, got %v", allowed)
	}

	allowed, err = engine.FilterToScope(context.Background(), principal, []int64{1, 2})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if !reflect.DeepEqual(allowed, []int64{1}) {
		t.Fatalf("expected [1], got %v", allowed)
	}
}

func TestFilterToScopeEmptyCandidatesYieldsFullScope(t *testing.T) {
	engine := newTestEngine(&stubPropertySource{ids: []int64{5, 3, 9}}, &stubAssignmentSource{})
	admin := Principal{ID: 1, Role: RoleAdmin}

	allowed, err := engine.FilterToScope(context.Background(), admin, nil)
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if !reflect.DeepEqual(allowed, []int64{3, 5, 9}) {
		t.Fatalf("expected sorted full scope, got %v", allowed)
	}
}

func TestFilterToScopeUnknownRoleSeesNothing(t *testing.T) {
	engine := newTestEngine(&stubPropertySource{ids: []int64{1, 2}}, &stubAssignmentSource{byUser: map[int64][]int64{7: {1}}})
	ghost := Principal{ID: 7, Role: ParseRole("superadmin")}

	allowed, err := engine.FilterToScope(context.Background(), ghost, []int64{1, 2})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(allowed) != 0 {
		t.Fatalf("unrecognized role must have zero privilege, got %v", allowed)
	}
}
