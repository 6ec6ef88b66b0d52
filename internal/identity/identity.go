// Package identity derives the stable keys that tie cart and wishlist
// entries to a catalog product and its color/size selection.
package identity

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	keySeparator = "_"
	noColor      = "no-color"
	noSize       = "no-size"
)

var leadingDigits = regexp.MustCompile(`^(\d+)`)

// Variant is a color/size selection. Both ids are set or both are absent;
// a half-filled variant is tolerated in the cart but refused at checkout.
type Variant struct {
	ColorID   *int64 `json:"color_id"`
	ColorName string `json:"color_name,omitempty"`
	SizeID    *int64 `json:"size_id"`
	SizeName  string `json:"size_name,omitempty"`
}

func (v Variant) Complete() bool {
	return v.ColorID != nil && v.SizeID != nil
}

func (v Variant) Empty() bool {
	return v.ColorID == nil && v.SizeID == nil
}

func (v Variant) Partial() bool {
	return !v.Complete() && !v.Empty()
}

// Key returns "<product>_<color|no-color>_<size|no-size>". Sentinels are
// not numeric, so they never collide with a real option id.
func Key(productID int64, v Variant) string {
	return strings.Join([]string{
		strconv.FormatInt(productID, 10),
		optionSegment(v.ColorID, noColor),
		optionSegment(v.SizeID, noSize),
	}, keySeparator)
}

func optionSegment(id *int64, sentinel string) string {
	if id == nil {
		return sentinel
	}
	return strconv.FormatInt(*id, 10)
}

// ParseProductID recovers the catalog product id from an item id that may be
// a composite such as "10-1-2" or "10_no-color_no-size". It returns 0 and
// ErrInvalidProductID when nothing numeric can be found.
func ParseProductID(raw string) (int64, error) {
	s := strings.TrimSpace(raw)

	if m := leadingDigits.FindStringSubmatch(s); m != nil {
		if id, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			return id, nil
		}
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) &&
		f >= math.MinInt64 && f <= math.MaxInt64 {
		return int64(f), nil
	}

	return 0, fmt.Errorf("%w: %q", ErrInvalidProductID, raw)
}
