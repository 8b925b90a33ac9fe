package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/emenu/internal/models"
)

// HistoryService writes and reads the append-only login history log.
type HistoryService struct{ DB *gorm.DB }

func NewHistoryService(db *gorm.DB) *HistoryService { return &HistoryService{DB: db} }

const userAgentMax = 255

// Record appends one authentication event. userID is nil when the submitted
// email matched no account; the attempt is still logged. Failures to write
// the log never block the authentication flow, hence no error return.
func (s *HistoryService) Record(userID *uint, ip, userAgent string, success bool, action string) {
	// Truncate by runes: a byte cut can split a multibyte sequence and the
	// resulting invalid UTF-8 would be rejected on insert.
	if ua := []rune(userAgent); len(ua) > userAgentMax {
		userAgent = string(ua[:userAgentMax])
	}
	s.DB.Create(&models.LoginHistory{
		UserID:    userID,
		LoginTime: time.Now(),
		IPAddress: ip,
		UserAgent: userAgent,
		Success:   success,
		Action:    action,
	})
}

// RecentForUser returns the user's history entries for the last `days` days,
// newest first. The dashboard shows a 10-day window.
func (s *HistoryService) RecentForUser(userID uint, days int) ([]models.LoginHistory, error) {
	var entries []models.LoginHistory
	since := time.Now().AddDate(0, 0, -days)
	err := s.DB.
		Where("user_id = ? AND login_time >= ?", userID, since).
		Order("login_time desc").
		Find(&entries).Error
	return entries, err
}
