package weather

import (
	"regexp"
	"strings"

	"github.com/i474232898/weather-dashboard/internal/common"
)

// Canonical condition codes.
const (
	CodeSunny        = 1000
	CodePartlyCloudy = 1003
	CodeCloudy       = 1006
	CodeOvercast     = 1009
	CodeThunder      = 1087
	CodeFog          = 1147
	CodeLightRain    = 1183
	CodeRain         = 1186
	CodeHeavyRain    = 1192
	CodeLightSnow    = 1210
	CodeSnow         = 1213
	CodeHeavySnow    = 1219
)

var conditionTexts = map[int]string{
	CodeSunny:        "Sunny",
	CodePartlyCloudy: "Partly cloudy",
	CodeCloudy:       "Cloudy",
	CodeOvercast:     "Overcast",
	CodeThunder:      "Thundery outbreaks possible",
	CodeFog:          "Fog",
	CodeLightRain:    "Light rain",
	CodeRain:         "Rain",
	CodeHeavyRain:    "Heavy rain",
	CodeLightSnow:    "Light snow",
	CodeSnow:         "Snow",
	CodeHeavySnow:    "Heavy snow",
}

// providerCodes folds the commercial provider's finer-grained codes into the
// canonical vocabulary.
var providerCodes = map[int]int{
	1000: CodeSunny,
	1003: CodePartlyCloudy,
	1006: CodeCloudy,
	1009: CodeOvercast,
	1030: CodeFog,
	1063: CodeLightRain,
	1066: CodeLightSnow,
	1069: CodeLightSnow,
	1072: CodeLightRain,
	1087: CodeThunder,
	1114: CodeSnow,
	1117: CodeHeavySnow,
	1135: CodeFog,
	1147: CodeFog,
	1150: CodeLightRain,
	1153: CodeLightRain,
	1168: CodeLightRain,
	1171: CodeRain,
	1180: CodeLightRain,
	1183: CodeLightRain,
	1186: CodeRain,
	1189: CodeRain,
	1192: CodeHeavyRain,
	1195: CodeHeavyRain,
	1198: CodeLightRain,
	1201: CodeRain,
	1204: CodeLightSnow,
	1207: CodeSnow,
	1210: CodeLightSnow,
	1213: CodeSnow,
	1216: CodeSnow,
	1219: CodeHeavySnow,
	1222: CodeHeavySnow,
	1225: CodeHeavySnow,
	1237: CodeSnow,
	1240: CodeLightRain,
	1243: CodeRain,
	1246: CodeHeavyRain,
	1249: CodeLightSnow,
	1252: CodeSnow,
	1255: CodeLightSnow,
	1258: CodeHeavySnow,
	1261: CodeLightSnow,
	1264: CodeSnow,
	1273: CodeThunder,
	1276: CodeThunder,
	1279: CodeThunder,
	1282: CodeThunder,
}

var (
	lightRe = regexp.MustCompile(`\blight\b`)
	rainRe  = regexp.MustCompile(`\brain\b`)
)

type conditionRule struct {
	code  int
	match func(s string) bool
}

// conditionRules are tested in order; more severe or precise categories come
// before generic ones.
var conditionRules = []conditionRule{
	{CodeThunder, func(s string) bool { return common.HasAny(s, "thunder", "t-storm", "tstorm") }},
	{CodeHeavySnow, func(s string) bool { return common.HasAny(s, "heavy snow", "blizzard") }},
	{CodeSnow, func(s string) bool { return strings.Contains(s, "snow") && !lightRe.MatchString(s) }},
	{CodeLightSnow, func(s string) bool { return common.HasAny(s, "light snow", "flurries") }},
	{CodeHeavyRain, func(s string) bool { return strings.Contains(s, "heavy rain") }},
	{CodeRain, func(s string) bool { return rainRe.MatchString(s) && !lightRe.MatchString(s) }},
	{CodeLightRain, func(s string) bool { return common.HasAny(s, "light rain", "drizzle", "showers", "rain") }},
	{CodeFog, func(s string) bool { return common.HasAny(s, "fog", "mist", "haze") }},
	{CodeOvercast, func(s string) bool { return common.HasAny(s, "overcast", "mostly cloudy") }},
	// "Partly cloudy" contains "cloudy" but belongs to the partly-cloudy rule below.
	{CodeCloudy, func(s string) bool {
		return (strings.Contains(s, "cloudy") && !strings.Contains(s, "partly")) || strings.Contains(s, "mostly clear")
	}},
	{CodePartlyCloudy, func(s string) bool { return strings.Contains(s, "partly") }},
	{CodeSunny, func(s string) bool { return common.HasAny(s, "sunny", "clear", "fair") }},
}

// ConditionCodeFromText maps free text to a canonical code. It is total:
// unmatched text yields CodeSunny.
func ConditionCodeFromText(text string) int {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return CodeSunny
	}
	for _, r := range conditionRules {
		if r.match(s) {
			return r.code
		}
	}
	return CodeSunny
}

// CanonicalCode folds a provider code into the canonical vocabulary, falling
// back to the text rules for codes the table does not know.
func CanonicalCode(providerCode int, text string) int {
	if c, ok := providerCodes[providerCode]; ok {
		return c
	}
	return ConditionCodeFromText(text)
}

// ConditionText returns the canonical description for a code.
func ConditionText(code int) string {
	if t, ok := conditionTexts[code]; ok {
		return t
	}
	return conditionTexts[CodeSunny]
}

// NewCondition builds a canonical Condition, keeping the provider's text when
// present.
func NewCondition(code int, text, icon string) Condition {
	if strings.TrimSpace(text) == "" {
		text = ConditionText(code)
	}
	return Condition{Text: strings.TrimSpace(text), Icon: AbsolutizeIcon(icon), Code: code}
}

// AbsolutizeIcon rewrites scheme-relative icon URLs to https.
func AbsolutizeIcon(icon string) string {
	if strings.HasPrefix(icon, "//") {
		return "https:" + icon
	}
	return icon
}

// IsSnowCode reports whether the canonical code is in the snow family.
func IsSnowCode(code int) bool {
	return code == CodeLightSnow || code == CodeSnow || code == CodeHeavySnow
}
