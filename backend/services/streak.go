package services

import (
	"time"

	"learnhub/backend/models"

	"gorm.io/gorm"
)

type StreakService struct {
	DB *gorm.DB
}

func NewStreakService(db *gorm.DB) *StreakService {
	return &StreakService{DB: db}
}

// CalendarDay marks one caller-local day for calendar rendering.
type CalendarDay struct {
	Date    string  `json:"date"` // YYYY-MM-DD
	Learned bool    `json:"learned"`
	Minutes float64 `json:"minutes"`
}

// DayMinutes is one point of the last-N-days dashboard chart.
type DayMinutes struct {
	Date    string  `json:"date"`
	Weekday string  `json:"weekday"`
	Minutes float64 `json:"minutes"`
}

const dayFormat = "2006-01-02"

// callerZone builds the fixed zone for the caller's UTC offset in minutes.
// Day boundaries always use the caller's calendar, never server time.
func callerZone(tzOffsetMinutes int) *time.Location {
	return time.FixedZone("caller", tzOffsetMinutes*60)
}

// dailyMinutes buckets every lecture completion of the user into its
// caller-local calendar day, summing minutes watched per day.
func (s *StreakService) dailyMinutes(userID uint, loc *time.Location) (map[string]float64, error) {
	var completions []models.LectureCompletion
	if err := s.DB.Where("user_id = ?", userID).Find(&completions).Error; err != nil {
		return nil, err
	}

	daily := make(map[string]float64)
	for _, completion := range completions {
		day := completion.CompletedAt.In(loc).Format(dayFormat)
		daily[day] += completion.DurationMinutes
	}
	return daily, nil
}

// ComputeStreak counts consecutive caller-local days with nonzero learning
// activity, walking backward from the reference date. A reference day with no
// activity yet is skipped rather than breaking the streak, so an in-progress
// "today" does not zero it out.
func (s *StreakService) ComputeStreak(userID uint, reference time.Time, tzOffsetMinutes int) (int, error) {
	loc := callerZone(tzOffsetMinutes)
	daily, err := s.dailyMinutes(userID, loc)
	if err != nil {
		return 0, err
	}
	if len(daily) == 0 {
		return 0, nil
	}

	local := reference.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	if daily[day.Format(dayFormat)] == 0 {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for daily[day.Format(dayFormat)] > 0 {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak, nil
}

// LearningCalendar returns one entry per caller-local day in [from, to],
// flagging the days with activity.
func (s *StreakService) LearningCalendar(userID uint, from, to time.Time, tzOffsetMinutes int) ([]CalendarDay, error) {
	loc := callerZone(tzOffsetMinutes)
	daily, err := s.dailyMinutes(userID, loc)
	if err != nil {
		return nil, err
	}

	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, loc)

	var days []CalendarDay
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		key := day.Format(dayFormat)
		minutes := daily[key]
		days = append(days, CalendarDay{
			Date:    key,
			Learned: minutes > 0,
			Minutes: minutes,
		})
	}
	return days, nil
}

// DailyMinutes returns the minutes watched per day for the last `days`
// caller-local days ending at the reference date, oldest first.
func (s *StreakService) DailyMinutes(userID uint, reference time.Time, days, tzOffsetMinutes int) ([]DayMinutes, error) {
	loc := callerZone(tzOffsetMinutes)
	daily, err := s.dailyMinutes(userID, loc)
	if err != nil {
		return nil, err
	}

	local := reference.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	series := make([]DayMinutes, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		key := day.Format(dayFormat)
		series = append(series, DayMinutes{
			Date:    key,
			Weekday: day.Weekday().String()[:3],
			Minutes: daily[key],
		})
	}
	return series, nil
}
