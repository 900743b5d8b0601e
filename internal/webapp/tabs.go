package webapp

// Tab is a top-level section of the navigation bar.
type Tab string

const (
	TabHome     Tab = "home"
	TabProfile  Tab = "profile"
	TabServices Tab = "services"
	TabAdmin    Tab = "admin"
)

// PathFor returns the canonical path a tab navigates to.
func PathFor(tab Tab) string {
	switch tab {
	case TabProfile:
		return "/profile"
	case TabServices:
		return "/services"
	case TabAdmin:
		return "/admin"
	default:
		return "/"
	}
}

// TabFor resolves a path to the tab it belongs to, so deep links and
// back-button navigation keep the selector in sync. The second return is
// false for pages outside any tab (instance setup, not found).
func TabFor(path string) (Tab, bool) {
	switch MatchPath(path).Page {
	case PageHome:
		return TabHome, true
	case PageProfile, PageProfileEdit:
		return TabProfile, true
	case PageServices:
		return TabServices, true
	case PageAdmin, PageInstanceSettings, PageInstanceAnalytics:
		return TabAdmin, true
	default:
		return "", false
	}
}
