//go:build !snitray_addronly

package snitray

import "sync"

// StoredItem is one entry of the full-mode [Store]: the last-known item
// snapshot and, once a menu tracker has run, its last-known menu layout.
type StoredItem struct {
	Item StatusNotifierItem
	Menu *TrayMenu
}

// Store is the process-wide mapping from item address to its last-known
// properties and menu. This is the full build variant, selected by the
// absence of the snitray_addronly build tag.
type Store struct {
	mu    sync.Mutex
	items map[string]*StoredItem
}

func newStore() *Store {
	return &Store{items: make(map[string]*StoredItem)}
}

func (s *Store) newItem(address string, item StatusNotifierItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[address] = &StoredItem{Item: item}
}

func (s *Store) removeItem(address string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[address]; !ok {
		return false
	}
	delete(s.items, address)
	return true
}

// clearItems empties the store and returns the addresses that were present,
// for use when the watcher is replaced.
func (s *Store) clearItems() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := make([]string, 0, len(s.items))
	for address := range s.items {
		removed = append(removed, address)
	}
	s.items = make(map[string]*StoredItem)
	return removed
}

func (s *Store) updateMenu(address string, menu TrayMenu) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.items[address]
	if !ok {
		return
	}
	entry.Menu = &menu
}

// applyUpdateEvent folds an UpdateEvent into the stored snapshot: scalar
// properties are re-fetched wholesale by the item tracker before the event
// is emitted, so applying it here is a straight field assignment, and menu
// diffs are folded into the cached layout by matching id.
func (s *Store) applyUpdateEvent(address string, update UpdateEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.items[address]
	if !ok {
		return
	}

	switch update.Kind {
	case UpdateAttentionIcon:
		entry.Item.AttentionIconName = update.IconName
		entry.Item.AttentionIconPixmap = update.IconData
	case UpdateIcon:
		entry.Item.IconName = update.IconName
		entry.Item.IconPixmap = update.IconData
	case UpdateOverlayIcon:
		entry.Item.OverlayIconName = update.IconName
		entry.Item.OverlayIconPixmap = update.IconData
	case UpdateStatus:
		entry.Item.Status = update.Status
	case UpdateTitle:
		entry.Item.Title = update.Title
	case UpdateTooltip:
		entry.Item.ToolTip = update.Tooltip
	case UpdateMenu:
		entry.Menu = &update.Menu
	case UpdateMenuDiff:
		if entry.Menu != nil {
			menu := *entry.Menu
			for _, diff := range update.MenuDiff {
				foldMenuDiff(menu.Submenus, diff)
			}
			entry.Menu = &menu
		}
	}
}

// foldMenuDiff applies one diff to the matching item in items (searched
// recursively by id) in place.
func foldMenuDiff(items []MenuItem, diff MenuDiff) bool {
	for i := range items {
		if items[i].ID == diff.ID {
			applyMenuItemUpdate(&items[i], diff.Update)
			for _, name := range diff.Remove {
				clearMenuItemProperty(&items[i], name)
			}
			return true
		}
		if foldMenuDiff(items[i].Submenu, diff) {
			return true
		}
	}
	return false
}

func applyMenuItemUpdate(item *MenuItem, update MenuItemUpdate) {
	if update.Label != nil {
		item.Label = **update.Label
	}
	if update.Enabled != nil {
		item.Enabled = *update.Enabled
	}
	if update.Visible != nil {
		item.Visible = *update.Visible
	}
	if update.IconName != nil {
		item.IconName = **update.IconName
	}
	if update.IconData != nil {
		item.IconData = **update.IconData
	}
	if update.ToggleState != nil {
		item.ToggleState = *update.ToggleState
	}
	if update.Disposition != nil {
		item.Disposition = *update.Disposition
	}
}

func clearMenuItemProperty(item *MenuItem, name string) {
	switch name {
	case "label":
		item.Label = ""
	case "icon-name":
		item.IconName = ""
	case "icon-data":
		item.IconData = nil
	}
}

// Snapshot returns a shallow copy of the current store contents.
func (s *Store) Snapshot() map[string]StoredItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]StoredItem, len(s.items))
	for address, entry := range s.items {
		out[address] = *entry
	}
	return out
}
