package services

import "github.com/zatekoja/trainingportal/internal/domain/entities"

// NavLink is one navbar entry. Action entries are posted to Href instead of
// followed.
type NavLink struct {
	Label  string `json:"label"`
	Href   string `json:"href"`
	Action bool   `json:"action,omitempty"`
}

// DashboardPath returns the landing page for a role
func DashboardPath(userType entities.UserType) string {
	switch userType {
	case entities.UserTypeAdmin:
		return "/admin"
	case entities.UserTypeTrainer:
		return "/trainer"
	default:
		return "/trainee"
	}
}

// Navigation returns the navbar links for the session
func Navigation(state *SessionState) []NavLink {
	links := []NavLink{{Label: "Home", Href: "/"}}

	if !state.SignedIn() {
		return append(links,
			NavLink{Label: "Login", Href: "/login"},
			NavLink{Label: "Register", Href: "/register"},
		)
	}

	links = append(links, NavLink{Label: state.Identity.Email})
	if state.User != nil {
		links = append(links, NavLink{Label: "Dashboard", Href: DashboardPath(state.User.UserType)})
	}
	return append(links, NavLink{Label: "Logout", Href: "/api/auth/logout", Action: true})
}

// Welcome greets the user by username
func Welcome(user *entities.User) string {
	if user == nil {
		return ""
	}
	return "Welcome, " + user.DisplayName() + "!"
}
