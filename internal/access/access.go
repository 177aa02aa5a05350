// Package access decides whether a principal may perform an action on a target.
//
// Decide is pure: callers load whatever entity the request names (or learn it
// is missing) and pass it in. Authorization is evaluated before existence, so a
// missing target only yields NotFound to principals who would have been allowed
// to touch it.
package access

type Principal struct {
	UserID        uint
	Staff         bool
	Authenticated bool
}

func Anonymous() Principal { return Principal{} }

func User(id uint, staff bool) Principal {
	return Principal{UserID: id, Staff: staff, Authenticated: true}
}

type Action int

const (
	ActionRegister Action = iota
	ActionList
	ActionCreate
	ActionRead
	ActionUpdate
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionRegister:
		return "register"
	case ActionList:
		return "list"
	case ActionCreate:
		return "create"
	case ActionRead:
		return "read"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	}
	return "unknown"
}

func (a Action) writes() bool {
	return a == ActionCreate || a == ActionUpdate || a == ActionDelete
}

type Decision int

const (
	Deny Decision = iota
	Allow
	NotFound
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case NotFound:
		return "not_found"
	default:
		return "deny"
	}
}

// Policy carries deployment switches. PublicCatalog opens product listing to
// any authenticated user.
type Policy struct {
	PublicCatalog bool
}

func (p Policy) Decide(pr Principal, a Action, t Target) Decision {
	if p.PublicCatalog && t.kind == KindProduct && t.collection && a == ActionList &&
		pr.Authenticated {
		return Allow
	}
	return Decide(pr, a, t)
}

func Decide(pr Principal, a Action, t Target) Decision {
	if t.kind == kindRegistration {
		return Allow
	}
	if !pr.Authenticated {
		return Deny
	}

	if t.collection {
		if pr.Staff {
			return Allow
		}
		return Deny
	}

	if pr.Staff {
		if !t.Exists() {
			return NotFound
		}
		return Allow
	}

	if t.kind == KindProduct {
		if a.writes() {
			return Deny
		}
		if !t.Exists() {
			return NotFound
		}
		return Allow
	}

	if !t.Exists() {
		// Only a user's own id is something a non-staff caller could have been
		// allowed to see; anything else stays forbidden.
		if t.kind == KindUser && t.id == pr.UserID {
			return NotFound
		}
		return Deny
	}

	if IsOwner(pr, t) {
		return Allow
	}
	return Deny
}
