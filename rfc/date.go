package rfc

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rfcparse/rfcparse"
)

// CookieDate is a parsed RFC 6265 cookie date. Two-digit years have already
// been windowed (70-99 into the 1900s, 00-69 into the 2000s).
type CookieDate struct {
	Year     int
	Month    int
	Day      int
	Hour     int
	Minute   int
	Second   int
	Timezone string
}

// Time returns the date as a time.Time. Cookie dates are always UTC.
func (d *CookieDate) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, d.Hour, d.Minute, d.Second, 0, time.UTC)
}

var monthNumbers = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

type dateToken struct {
	text   string
	offset int
}

type timeOfDay struct {
	hour, minute, second int
}

var dateTransformer = sync.OnceValue(func() *rfcparse.Transformer {
	atoi := func(c *rfcparse.Capture) (interface{}, error) {
		n, err := strconv.Atoi(c.Text())
		if err != nil {
			return nil, err
		}
		return n, nil
	}
	t := rfcparse.NewTransformer()
	t.On("cookie_date", func(c *rfcparse.Capture) (interface{}, error) {
		var tokens []dateToken
		for _, v := range c.All("date_token") {
			tokens = append(tokens, dateToken{text: v.V.(string), offset: v.Start})
		}
		return tokens, nil
	})
	t.On("hour", atoi)
	t.On("minute", atoi)
	t.On("second", atoi)
	t.On("daynum", atoi)
	t.On("yearnum", atoi)
	t.On("time", func(c *rfcparse.Capture) (interface{}, error) {
		hour, _ := c.Child("hour")
		minute, _ := c.Child("minute")
		second, _ := c.Child("second")
		return timeOfDay{hour.V.(int), minute.V.(int), second.V.(int)}, nil
	})
	t.On("day_of_month", func(c *rfcparse.Capture) (interface{}, error) {
		day, _ := c.Child("daynum")
		return day.V, nil
	})
	t.On("year", func(c *rfcparse.Capture) (interface{}, error) {
		year, _ := c.Child("yearnum")
		return year.V, nil
	})
	t.On("month", func(c *rfcparse.Capture) (interface{}, error) {
		return monthNumbers[strings.ToLower(c.Text()[:3])], nil
	})
	return t
})

var dateParser = sync.OnceValue(func() *rfcparse.Parser[[]dateToken] {
	return rfcparse.MustParser[[]dateToken](dateGrammar(), "cookie_date", rfcparse.Transform(dateTransformer()))
})

var (
	timeParser = sync.OnceValue(func() *rfcparse.Parser[timeOfDay] {
		return rfcparse.MustParser[timeOfDay](dateGrammar(), "time", rfcparse.Transform(dateTransformer()))
	})
	dayParser = sync.OnceValue(func() *rfcparse.Parser[int] {
		return rfcparse.MustParser[int](dateGrammar(), "day_of_month", rfcparse.Transform(dateTransformer()))
	})
	monthParser = sync.OnceValue(func() *rfcparse.Parser[int] {
		return rfcparse.MustParser[int](dateGrammar(), "month", rfcparse.Transform(dateTransformer()))
	})
	yearParser = sync.OnceValue(func() *rfcparse.Parser[int] {
		return rfcparse.MustParser[int](dateGrammar(), "year", rfcparse.Transform(dateTransformer()))
	})
)

// ParseCookieDate parses an RFC 6265 section 5.1.1 cookie date such as
// "Tue, 07-Feb-2023 13:20:04 GMT". Tokens are classified in order as time,
// day of month, month and year, first match per field winning; unrecognized
// tokens (weekday names) are skipped, as the algorithm requires.
func ParseCookieDate(text string) (*CookieDate, error) {
	tokens, err := dateParser().Parse(text)
	if err != nil {
		return nil, err
	}
	var (
		foundTime, foundDay, foundMonth, foundYear *dateToken
		date                                       CookieDate
	)
	for i := range tokens {
		token := &tokens[i]
		switch {
		case foundTime == nil && classify(timeParser(), "time", token, func(v timeOfDay) {
			date.Hour, date.Minute, date.Second = v.hour, v.minute, v.second
		}):
			foundTime = token
		case foundDay == nil && classify(dayParser(), "day_of_month", token, func(v int) { date.Day = v }):
			foundDay = token
		case foundMonth == nil && classify(monthParser(), "month", token, func(v int) { date.Month = v }):
			foundMonth = token
		case foundYear == nil && classify(yearParser(), "year", token, func(v int) { date.Year = v }):
			foundYear = token
		case strings.EqualFold(token.text, "gmt"):
			date.Timezone = "GMT"
		}
	}
	var missing []string
	if foundTime == nil {
		missing = append(missing, "time")
	}
	if foundDay == nil {
		missing = append(missing, "day of month")
	}
	if foundMonth == nil {
		missing = append(missing, "month")
	}
	if foundYear == nil {
		missing = append(missing, "year")
	}
	if len(missing) > 0 {
		return nil, rfcparse.Semantic(0, "cookie date is missing: %s", strings.Join(missing, ", "))
	}
	switch {
	case date.Year >= 70 && date.Year <= 99:
		date.Year += 1900
	case date.Year >= 0 && date.Year <= 69:
		date.Year += 2000
	}
	switch {
	case date.Day < 1 || date.Day > 31:
		return nil, rfcparse.Semantic(foundDay.offset, "day of month must be between 1 and 31")
	case date.Year < 1601:
		return nil, rfcparse.Semantic(foundYear.offset, "year must be 1601 or later")
	case date.Hour > 23:
		return nil, rfcparse.Semantic(foundTime.offset, "hour cannot exceed 23")
	case date.Minute > 59:
		return nil, rfcparse.Semantic(foundTime.offset, "minute cannot exceed 59")
	case date.Second > 59:
		return nil, rfcparse.Semantic(foundTime.offset, "second cannot exceed 59")
	}
	return &date, nil
}

// classify re-parses one token from an alternative start rule, recording the
// value on success.
func classify[T any](p *rfcparse.Parser[T], start string, token *dateToken, set func(T)) bool {
	v, err := p.ParseFrom(start, token.text)
	if err != nil {
		return false
	}
	set(v)
	return true
}
