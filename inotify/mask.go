//go:build linux

package inotify

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/sys/unix"
)

// ConfigMask selects the events reported for a watch, plus flags that
// change how the watch is installed. See inotify(7).
type ConfigMask uint32

// EventMask is the set of flags carried by a received Event.
//
// It shares its bit layout with ConfigMask, but the two are not
// interchangeable: a watch is configured with one and reports the other.
type EventMask uint32

const (
	InAccess       ConfigMask = unix.IN_ACCESS
	InModify       ConfigMask = unix.IN_MODIFY
	InAttrib       ConfigMask = unix.IN_ATTRIB
	InCloseWrite   ConfigMask = unix.IN_CLOSE_WRITE
	InCloseNoWrite ConfigMask = unix.IN_CLOSE_NOWRITE
	InOpen         ConfigMask = unix.IN_OPEN
	InMovedFrom    ConfigMask = unix.IN_MOVED_FROM
	InMovedTo      ConfigMask = unix.IN_MOVED_TO
	InCreate       ConfigMask = unix.IN_CREATE
	InDelete       ConfigMask = unix.IN_DELETE
	InDeleteSelf   ConfigMask = unix.IN_DELETE_SELF
	InMoveSelf     ConfigMask = unix.IN_MOVE_SELF

	InClose     ConfigMask = unix.IN_CLOSE
	InMove      ConfigMask = unix.IN_MOVE
	InAllEvents ConfigMask = unix.IN_ALL_EVENTS

	// Flags below change how a watch is installed and are never reported.
	InOnlyDir    ConfigMask = unix.IN_ONLYDIR
	InDontFollow ConfigMask = unix.IN_DONT_FOLLOW
	InExclUnlink ConfigMask = unix.IN_EXCL_UNLINK
	InMaskAdd    ConfigMask = unix.IN_MASK_ADD
	InOneShot    ConfigMask = unix.IN_ONESHOT
)

const (
	EvAccess       EventMask = unix.IN_ACCESS
	EvModify       EventMask = unix.IN_MODIFY
	EvAttrib       EventMask = unix.IN_ATTRIB
	EvCloseWrite   EventMask = unix.IN_CLOSE_WRITE
	EvCloseNoWrite EventMask = unix.IN_CLOSE_NOWRITE
	EvOpen         EventMask = unix.IN_OPEN
	EvMovedFrom    EventMask = unix.IN_MOVED_FROM
	EvMovedTo      EventMask = unix.IN_MOVED_TO
	EvCreate       EventMask = unix.IN_CREATE
	EvDelete       EventMask = unix.IN_DELETE
	EvDeleteSelf   EventMask = unix.IN_DELETE_SELF
	EvMoveSelf     EventMask = unix.IN_MOVE_SELF

	EvUnmount       EventMask = unix.IN_UNMOUNT
	EvQueueOverflow EventMask = unix.IN_Q_OVERFLOW
	EvIgnored       EventMask = unix.IN_IGNORED
	EvIsDir         EventMask = unix.IN_ISDIR
)

func (m ConfigMask) Union(o ConfigMask) ConfigMask     { return m | o }
func (m ConfigMask) Intersect(o ConfigMask) ConfigMask { return m & o }

// IsSubset reports whether every flag in m is also set in of.
func (m ConfigMask) IsSubset(of ConfigMask) bool { return m&of == m }

// HasOverlap reports whether m and o share at least one flag.
func (m ConfigMask) HasOverlap(o ConfigMask) bool { return m&o != 0 }

// Events returns the result flags this configuration asks the kernel to
// report, dropping the flags that only affect how the watch is installed.
func (m ConfigMask) Events() EventMask {
	return EventMask(m & InAllEvents)
}

func (m ConfigMask) String() string { return formatMask(uint32(m), configNames) }

func (m EventMask) Union(o EventMask) EventMask     { return m | o }
func (m EventMask) Intersect(o EventMask) EventMask { return m & o }

// IsSubset reports whether every flag in m is also set in of.
func (m EventMask) IsSubset(of EventMask) bool { return m&of == m }

// HasOverlap reports whether m and o share at least one flag.
func (m EventMask) HasOverlap(o EventMask) bool { return m&o != 0 }

func (m EventMask) String() string { return formatMask(uint32(m), eventNames) }

type maskName struct {
	bit  uint32
	name string
}

var commonNames = []maskName{
	{unix.IN_ACCESS, "ACCESS"},
	{unix.IN_MODIFY, "MODIFY"},
	{unix.IN_ATTRIB, "ATTRIB"},
	{unix.IN_CLOSE_WRITE, "CLOSE_WRITE"},
	{unix.IN_CLOSE_NOWRITE, "CLOSE_NOWRITE"},
	{unix.IN_OPEN, "OPEN"},
	{unix.IN_MOVED_FROM, "MOVED_FROM"},
	{unix.IN_MOVED_TO, "MOVED_TO"},
	{unix.IN_CREATE, "CREATE"},
	{unix.IN_DELETE, "DELETE"},
	{unix.IN_DELETE_SELF, "DELETE_SELF"},
	{unix.IN_MOVE_SELF, "MOVE_SELF"},
}

var configNames = append(append([]maskName{}, commonNames...),
	maskName{unix.IN_ONLYDIR, "ONLYDIR"},
	maskName{unix.IN_DONT_FOLLOW, "DONT_FOLLOW"},
	maskName{unix.IN_EXCL_UNLINK, "EXCL_UNLINK"},
	maskName{unix.IN_MASK_ADD, "MASK_ADD"},
	maskName{unix.IN_ONESHOT, "ONESHOT"},
)

var eventNames = append(append([]maskName{}, commonNames...),
	maskName{unix.IN_UNMOUNT, "UNMOUNT"},
	maskName{unix.IN_Q_OVERFLOW, "Q_OVERFLOW"},
	maskName{unix.IN_IGNORED, "IGNORED"},
	maskName{unix.IN_ISDIR, "ISDIR"},
)

func formatMask(m uint32, names []maskName) string {
	if m == 0 {
		return "0"
	}
	var parts []string
	for _, n := range names {
		if m&n.bit != 0 {
			parts = append(parts, n.name)
			m &^= n.bit
		}
	}
	if m != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", m))
	}
	return strings.Join(parts, "|")
}

// ParseConfigMask parses flag names separated by commas, pipes or spaces,
// such as "create,close_write" or "CREATE|MOVED_TO". Names are matched
// case-insensitively; "all", "close" and "move" select the combined masks.
func ParseConfigMask(s string) (ConfigMask, error) {
	var m ConfigMask
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '|' || unicode.IsSpace(r)
	})
	for _, f := range fields {
		switch name := strings.ToUpper(f); name {
		case "ALL", "ALL_EVENTS":
			m |= InAllEvents
		case "CLOSE":
			m |= InClose
		case "MOVE":
			m |= InMove
		default:
			bit, ok := lookupName(name, configNames)
			if !ok {
				return 0, fmt.Errorf("inotify: unknown flag %q", f)
			}
			m |= ConfigMask(bit)
		}
	}
	if m.Events() == 0 {
		return 0, fmt.Errorf("inotify: mask %q selects no events", s)
	}
	return m, nil
}

func lookupName(name string, names []maskName) (uint32, bool) {
	for _, n := range names {
		if n.name == name {
			return n.bit, true
		}
	}
	return 0, false
}
