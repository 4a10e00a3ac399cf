// Package solutionsheet decides when a solution sheet becomes visible to students.
//
// All timestamps are Unix seconds. The functions are pure; callers supply the
// due date and the current time.
package solutionsheet

// ShowType controls when students may view the solution sheet.
type ShowType int

const (
	// ShowNever keeps the solutions hidden from students.
	ShowNever ShowType = 0
	// ShowImmediately releases the solutions straight away.
	ShowImmediately ShowType = 1
	// ShowAfterDueDate releases the solutions a fixed offset after the due date.
	ShowAfterDueDate ShowType = 2
)

const (
	// NeverAvailable is the availability time of a sheet students never see.
	NeverAvailable int64 = -1
	// AvailableImmediately is the availability time of a sheet released right away.
	AvailableImmediately int64 = 0
)

// Valid reports whether t is one of the known show types.
func (t ShowType) Valid() bool {
	return t == ShowNever || t == ShowImmediately || t == ShowAfterDueDate
}

func (t ShowType) String() string {
	switch t {
	case ShowNever:
		return "never"
	case ShowImmediately:
		return "immediately"
	case ShowAfterDueDate:
		return "after_due_date"
	default:
		return "unknown"
	}
}

// Config holds the per-assignment visibility settings.
type Config struct {
	ShowType          ShowType `json:"show_type"`
	ShowOffsetSeconds int64    `json:"show_offset_seconds"`
	HideAfter         int64    `json:"hide_after"`
}

// AvailabilityTime returns when students may first see the solutions:
// NeverAvailable, AvailableImmediately, or an absolute timestamp.
func AvailabilityTime(cfg Config, dueDate int64) int64 {
	switch cfg.ShowType {
	case ShowNever:
		return NeverAvailable
	case ShowImmediately:
		return AvailableImmediately
	case ShowAfterDueDate:
		// No due date means there is nothing to count from, so stay hidden.
		if dueDate <= 0 {
			return NeverAvailable
		}
		available := dueDate + cfg.ShowOffsetSeconds
		// Overflowed or pre-epoch results from corrupt offsets stay hidden.
		if (cfg.ShowOffsetSeconds > 0 && available < dueDate) || available < 0 {
			return NeverAvailable
		}
		return available
	default:
		return NeverAvailable
	}
}

// IsAvailableNow reports whether the availability time has strictly passed.
// The hide-after cutoff is not considered.
func IsAvailableNow(cfg Config, dueDate, now int64) bool {
	t := AvailabilityTime(cfg, dueDate)
	return t >= 0 && t < now
}

// IsHiddenAgain reports whether the hide-after cutoff has passed.
func IsHiddenAgain(cfg Config, now int64) bool {
	return cfg.HideAfter > 0 && cfg.HideAfter < now
}

// StudentsCanView reports whether students may view the solutions at now.
func StudentsCanView(cfg Config, dueDate, now int64) bool {
	return IsAvailableNow(cfg, dueDate, now) && !IsHiddenAgain(cfg, now)
}

// CanUploaderView decides whether a user may see the solution files given the
// two view capabilities and the current student visibility.
func CanUploaderView(capViewAnytime, capViewConditional, studentsCanView bool) bool {
	if capViewAnytime {
		return true
	}
	if capViewConditional {
		return studentsCanView
	}
	return false
}

// State is the resolved visibility of a solution sheet at a point in time.
type State struct {
	AvailabilityTime int64 `json:"availability_time"`
	AvailableNow     bool  `json:"available_now"`
	HiddenAgain      bool  `json:"hidden_again"`
	StudentsCanView  bool  `json:"students_can_view"`
}

// Resolve evaluates every visibility predicate for cfg at now.
func Resolve(cfg Config, dueDate, now int64) State {
	available := IsAvailableNow(cfg, dueDate, now)
	hidden := IsHiddenAgain(cfg, now)
	return State{
		AvailabilityTime: AvailabilityTime(cfg, dueDate),
		AvailableNow:     available,
		HiddenAgain:      hidden,
		StudentsCanView:  available && !hidden,
	}
}
