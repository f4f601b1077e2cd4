// Package particle parses the loosely typed values found in effect
// parameter maps: numbers, "[min max]" ranges, "time,value" keyframe
// curves and "#RRGGBB" colors.
//
// Catalog authors may write `count: 5`, `count: "[3 6]"` or
// `size: "[4 8]"`; the dispatcher resolves all of them through this
// package so that one parameter syntax serves every effect kind.
package particle

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
)

// Keyframe represents a single keyframe in an animation curve.
type Keyframe struct {
	Time  float64 // Normalized time (0-1)
	Value float64 // Value at this keyframe
}

// interpolationKeywords are the curve modes understood by EvaluateKeyframes.
var interpolationKeywords = []string{"Linear", "EaseIn", "EaseOut", "FastInOutWeak"}

// ParseValue parses a parameter value string.
// Supported formats:
//   - Fixed value: "1500" → min=1500, max=1500, keyframes=nil
//   - Range: "[0.7 0.9]" → min=0.7, max=0.9, keyframes=nil
//   - Single bracketed value: "[3]" → min=max=3
//   - Keyframes: "0,2 1,21" → keyframes=[{0,2} {1,21}]
//   - Interpolation: "EaseOut 0,1 1,0" → keyframes with interpolation="EaseOut"
//
// Malformed input yields zeros rather than an error; callers treat zero as
// "use the default".
func ParseValue(s string) (min, max float64, keyframes []Keyframe, interpolation string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, nil, ""
	}

	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		parts := strings.Fields(strings.TrimSuffix(strings.TrimPrefix(s, "["), "]"))
		switch len(parts) {
		case 2:
			lo, err1 := strconv.ParseFloat(parts[0], 64)
			hi, err2 := strconv.ParseFloat(parts[1], 64)
			if err1 == nil && err2 == nil {
				return lo, hi, nil, ""
			}
		case 1:
			if val, err := strconv.ParseFloat(parts[0], 64); err == nil {
				return val, val, nil, ""
			}
		}
		return 0, 0, nil, ""
	}

	for _, keyword := range interpolationKeywords {
		if strings.Contains(s, keyword) {
			interpolation = keyword
			s = strings.TrimSpace(strings.ReplaceAll(s, keyword, ""))
			break
		}
	}

	if strings.Contains(s, ",") {
		for _, part := range strings.Fields(s) {
			pair := strings.Split(part, ",")
			if len(pair) != 2 {
				continue
			}
			t, err1 := strconv.ParseFloat(pair[0], 64)
			v, err2 := strconv.ParseFloat(pair[1], 64)
			if err1 != nil || err2 != nil {
				continue
			}
			keyframes = append(keyframes, Keyframe{Time: t, Value: v})
		}
		if len(keyframes) > 0 {
			return 0, 0, keyframes, interpolation
		}
		return 0, 0, nil, ""
	}

	if value, err := strconv.ParseFloat(s, 64); err == nil {
		return value, value, nil, ""
	}
	return 0, 0, nil, ""
}

// ResolveNumber turns a parameter value of any catalog type into a number.
// Numbers are returned as-is, strings go through ParseValue and a range
// is sampled with rng. ok is false when v carries no usable number.
func ResolveNumber(v any, rng *rand.Rand) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		lo, hi, keyframes, _ := ParseValue(n)
		if len(keyframes) > 0 {
			return keyframes[0].Value, true
		}
		if lo == 0 && hi == 0 {
			// "0" and "[0 0]" are legitimate zeros; garbage is not
			if strings.Trim(strings.TrimSpace(n), "[]0. ") != "" {
				return 0, false
			}
		}
		return RandomInRangeWith(rng, lo, hi), true
	default:
		return 0, false
	}
}

// NumberBounds reports the smallest and largest value ResolveNumber can
// produce for v. A curve spans its keyframe values.
func NumberBounds(v any) (lo, hi float64, ok bool) {
	s, isString := v.(string)
	if !isString {
		n, ok := ResolveNumber(v, nil)
		return n, n, ok
	}
	min, max, keyframes, _ := ParseValue(s)
	if len(keyframes) > 0 {
		lo, hi = keyframes[0].Value, keyframes[0].Value
		for _, kf := range keyframes[1:] {
			lo = math.Min(lo, kf.Value)
			hi = math.Max(hi, kf.Value)
		}
		return lo, hi, true
	}
	if _, ok := ResolveNumber(s, nil); !ok {
		return 0, 0, false
	}
	if min > max {
		min, max = max, min
	}
	return min, max, true
}

// EvaluateKeyframes calculates the interpolated value at time t (0-1)
// using the provided keyframes and interpolation mode.
//
// Parameters:
//   - keyframes: Array of keyframes (must be sorted by Time)
//   - t: Normalized time (0-1)
//   - interpolation: Interpolation mode ("Linear", "EaseIn", etc.)
func EvaluateKeyframes(keyframes []Keyframe, t float64, interpolation string) float64 {
	if len(keyframes) == 0 {
		return 0
	}
	if len(keyframes) == 1 {
		return keyframes[0].Value
	}

	t = math.Max(0, math.Min(1, t))
	if t < keyframes[0].Time {
		return keyframes[0].Value
	}

	for i := 0; i < len(keyframes)-1; i++ {
		k0 := keyframes[i]
		k1 := keyframes[i+1]
		if t < k0.Time || t > k1.Time {
			continue
		}

		span := k1.Time - k0.Time
		if span <= 0 {
			return k0.Value
		}
		ratio := (t - k0.Time) / span

		switch interpolation {
		case "EaseIn":
			ratio = ratio * ratio
		case "EaseOut":
			ratio = 1 - (1-ratio)*(1-ratio)
		case "FastInOutWeak":
			ratio = ratio * ratio * (3 - 2*ratio)
		}
		return k0.Value + ratio*(k1.Value-k0.Value)
	}

	return keyframes[len(keyframes)-1].Value
}

// RandomInRangeWith returns a value in [min, max] drawn from rng, or from
// the package source when rng is nil. An empty or inverted range yields min.
func RandomInRangeWith(rng *rand.Rand, min, max float64) float64 {
	if min >= max {
		return min
	}
	if rng == nil {
		return min + rand.Float64()*(max-min)
	}
	return min + rng.Float64()*(max-min)
}

// ParseHexColor parses "#RGB", "#RRGGBB" or "#RRGGBBAA" (the leading '#'
// is optional) into 8-bit channels.
func ParseHexColor(s string) (r, g, b, a uint8, err error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return 0, 0, 0, 0, fmt.Errorf("invalid color %q: want #RGB, #RRGGBB or #RRGGBBAA", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return uint8(v >> 24), uint8(v >> 16), uint8(v >> 8), uint8(v), nil
}
