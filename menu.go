package snitray

// MenuInterface is the D-Bus interface name implemented by a tray item's
// menu object.
const MenuInterface = "com.canonical.dbusmenu"

// MenuType distinguishes a clickable entry from a separator.
type MenuType int

const (
	MenuTypeStandard MenuType = iota // default
	MenuTypeSeparator
)

func menuTypeFromString(s string) MenuType {
	if s == "separator" {
		return MenuTypeSeparator
	}
	return MenuTypeStandard
}

// ToggleType describes how a menu item's toggle state should be presented.
type ToggleType int

const (
	ToggleTypeCannotBeToggled ToggleType = iota // default
	ToggleTypeCheckmark
	ToggleTypeRadio
)

func toggleTypeFromString(s string) ToggleType {
	switch s {
	case "checkmark":
		return ToggleTypeCheckmark
	case "radio":
		return ToggleTypeRadio
	default:
		return ToggleTypeCannotBeToggled
	}
}

// ToggleState is the current state of a togglable menu item.
type ToggleState int

const (
	ToggleStateOn ToggleState = iota // default
	ToggleStateOff
	ToggleStateIndeterminate
)

// toggleStateFromInt maps the wire integer encoding: 0 is off, 1 is on,
// anything else is indeterminate.
func toggleStateFromInt(n int32) ToggleState {
	switch n {
	case 0:
		return ToggleStateOff
	case 1:
		return ToggleStateOn
	default:
		return ToggleStateIndeterminate
	}
}

// Disposition is how urgently a menu item's information should be presented.
type Disposition int

const (
	DispositionNormal Disposition = iota // default
	DispositionInformative
	DispositionWarning
	DispositionAlert
)

func dispositionFromString(s string) Disposition {
	switch s {
	case "informative":
		return DispositionInformative
	case "warning":
		return DispositionWarning
	case "alert":
		return DispositionAlert
	default:
		return DispositionNormal
	}
}

// TrayMenu is the layout of a tray item's menu, rooted at id.
type TrayMenu struct {
	ID       uint32
	Submenus []MenuItem
}

// MenuItem is one node in a [TrayMenu]'s layout tree.
type MenuItem struct {
	ID              int32
	MenuType        MenuType
	Label           string
	Enabled         bool
	Visible         bool
	IconName        string
	IconData        []byte
	Shortcut        [][]string
	ToggleType      ToggleType
	ToggleState     ToggleState
	ChildrenDisplay string
	Disposition     Disposition
	Submenu         []MenuItem
}

// MenuDiff is an incremental change to one menu item, merged from the
// updated/removed entries of an ItemsPropertiesUpdated signal.
type MenuDiff struct {
	ID     int32
	Update MenuItemUpdate
	Remove []string
}

// MenuItemUpdate carries only the properties that changed for one menu
// item. Each field is tri-state: a nil pointer means the property was not
// touched by this diff; a non-nil pointer to a nil inner pointer (for the
// nullable fields) means the property was explicitly cleared.
type MenuItemUpdate struct {
	Label       **string
	Enabled     *bool
	Visible     *bool
	IconName    **string
	IconData    **[]byte
	ToggleState *ToggleState
	Disposition *Disposition
}
