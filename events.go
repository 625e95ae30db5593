package snitray

// Event is one occurrence in the tray: an item appearing, a property of an
// already-known item changing, or an item disappearing.
type Event struct {
	Kind    EventKind
	Address string
	Item    StatusNotifierItem
	Update  UpdateEvent
}

// EventKind tags the variant carried by an [Event].
type EventKind int

const (
	EventAdd EventKind = iota
	EventUpdate
	EventRemove
)

func (k EventKind) String() string {
	switch k {
	case EventAdd:
		return "Add"
	case EventUpdate:
		return "Update"
	case EventRemove:
		return "Remove"
	default:
		return "Unknown"
	}
}

// UpdateEvent is the payload of an [EventUpdate] event: exactly one of its
// fields is meaningful, selected by Kind.
type UpdateEvent struct {
	Kind UpdateKind

	IconName string
	IconData []Icon

	Status  Status
	Title   string
	Tooltip *Tooltip

	Menu        TrayMenu
	MenuDiff    []MenuDiff
	MenuConnect string
}

// UpdateKind selects which property changed in an [UpdateEvent].
type UpdateKind int

const (
	UpdateAttentionIcon UpdateKind = iota
	UpdateIcon
	UpdateOverlayIcon
	UpdateStatus
	UpdateTitle
	UpdateTooltip
	UpdateMenu
	UpdateMenuDiff
	UpdateMenuConnect
)

func (k UpdateKind) String() string {
	switch k {
	case UpdateAttentionIcon:
		return "AttentionIcon"
	case UpdateIcon:
		return "Icon"
	case UpdateOverlayIcon:
		return "OverlayIcon"
	case UpdateStatus:
		return "Status"
	case UpdateTitle:
		return "Title"
	case UpdateTooltip:
		return "Tooltip"
	case UpdateMenu:
		return "Menu"
	case UpdateMenuDiff:
		return "MenuDiff"
	case UpdateMenuConnect:
		return "MenuConnect"
	default:
		return "Unknown"
	}
}

func addEvent(address string, item StatusNotifierItem) Event {
	return Event{Kind: EventAdd, Address: address, Item: item}
}

func removeEvent(address string) Event {
	return Event{Kind: EventRemove, Address: address}
}

func updateEvent(address string, update UpdateEvent) Event {
	return Event{Kind: EventUpdate, Address: address, Update: update}
}

// ActivateRequest is the argument to [Client.Activate]: exactly one of its
// shapes is populated, selected by Kind.
type ActivateRequest struct {
	Kind ActivateKind

	Address    string
	MenuPath   string
	SubmenuID  int32
	X, Y       int32
}

// ActivateKind selects the shape of an [ActivateRequest].
type ActivateKind int

const (
	ActivateMenuItem ActivateKind = iota
	ActivateDefault
	ActivateSecondary
)
