// Package status derives display labels from free-text and numeric data:
// shop open/closed state from opening hours, month-over-month trends, and
// the adult BMI classification.
package status

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Color is the badge tone a UI uses for a status.
type Color string

const (
	ColorGreen Color = "green"
	ColorRed   Color = "red"
	ColorGray  Color = "gray"
)

// ShopState is the machine-readable shop status.
type ShopState string

const (
	ShopOpen    ShopState = "open"
	ShopClosed  ShopState = "closed"
	ShopUnknown ShopState = "unknown"
)

// ShopStatus is the open/closed badge of a UMKM.
type ShopStatus struct {
	State ShopState `json:"state"`
	Label string    `json:"label"`
	Color Color     `json:"color"`
}

var (
	statusOpen    = ShopStatus{State: ShopOpen, Label: "Buka", Color: ColorGreen}
	statusClosed  = ShopStatus{State: ShopClosed, Label: "Tutup", Color: ColorRed}
	statusUnknown = ShopStatus{State: ShopUnknown, Label: "Info jam buka", Color: ColorGray}
)

var hoursPattern = regexp.MustCompile(`(\d{1,2}):(\d{2})\s*-\s*(\d{1,2}):(\d{2})`)

var hoursReplacer = strings.NewReplacer("–", "-", "—", "-", ".", ":")

// DeriveShopStatus evaluates opening hours such as "08.00–17.00" or
// "08:00-17:00" against now. Text that does not contain a range yields the
// neutral unknown status. Ranges crossing midnight are not supported: the
// shop is open only when start <= now <= end.
func DeriveShopStatus(jamBuka string, now time.Time) ShopStatus {
	if jamBuka == "" {
		return statusUnknown
	}
	s := strings.TrimSpace(hoursReplacer.Replace(jamBuka))
	m := hoursPattern.FindStringSubmatch(s)
	if m == nil {
		return statusUnknown
	}

	var parts [4]int
	for i := range parts {
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return statusUnknown
		}
		parts[i] = n
	}

	start := parts[0]*60 + parts[1]
	end := parts[2]*60 + parts[3]
	cur := now.Hour()*60 + now.Minute()

	if cur >= start && cur <= end {
		return statusOpen
	}
	return statusClosed
}
