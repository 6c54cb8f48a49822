// Package markethours provides the NSE session calendar used to decide
// which daily bars are final. A bar is final once its session has closed;
// the bar of a still-open session is never fed to the indicator batch.
package markethours

import "time"

// IST is the Indian Standard Time location (UTC+5:30).
var IST = time.FixedZone("IST", 5*3600+30*60)

// Market hours in IST.
const (
	OpenHour    = 9
	OpenMinute  = 15
	CloseHour   = 15
	CloseMinute = 30
)

// IsMarketOpen returns true if t falls within NSE trading hours
// (9:15 AM – 3:30 PM IST, Mon–Fri, excluding holidays).
func IsMarketOpen(t time.Time) bool {
	ist := t.In(IST)
	if !IsTradingDay(ist) {
		return false
	}
	hm := ist.Hour()*60 + ist.Minute()
	return hm >= OpenHour*60+OpenMinute && hm < CloseHour*60+CloseMinute
}

// IsWeekday returns true if t is Mon–Fri in IST.
func IsWeekday(t time.Time) bool {
	wd := t.In(IST).Weekday()
	return wd >= time.Monday && wd <= time.Friday
}

// IsTradingDay returns true if t is a weekday and not a holiday.
func IsTradingDay(t time.Time) bool {
	ist := t.In(IST)
	return IsWeekday(ist) && !IsHoliday(ist)
}

// SessionClose returns the close time (3:30 PM IST) of t's calendar day.
func SessionClose(t time.Time) time.Time {
	ist := t.In(IST)
	return time.Date(ist.Year(), ist.Month(), ist.Day(), CloseHour, CloseMinute, 0, 0, IST)
}

// SessionCutoff returns the exclusive upper date bound for final daily
// bars as of now: bars dated strictly before the cutoff are closed and
// usable for indicator computation.
//
// On a trading day the cutoff stays at today's date until the session has
// closed, so the forming bar is excluded; after close it advances to
// tomorrow, admitting today's bar. On weekends and holidays today cannot
// be a forming session, so the cutoff is tomorrow.
func SessionCutoff(now time.Time) time.Time {
	ist := now.In(IST)
	day := time.Date(ist.Year(), ist.Month(), ist.Day(), 0, 0, 0, 0, time.UTC)
	if IsTradingDay(ist) && ist.Before(SessionClose(ist)) {
		return day
	}
	return day.AddDate(0, 0, 1)
}
