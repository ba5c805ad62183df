package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rolinkstone/new-talawang-sub001/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// PinHeader request header carrying the transaction PIN
const PinHeader = "X-Transaction-PIN"

// ErrPinNotSet the user has not registered a transaction PIN yet
var ErrPinNotSet = errors.New("transaction PIN not set")

// ErrPinMismatch the supplied PIN does not match the stored hash
var ErrPinMismatch = errors.New("invalid transaction PIN")

// PinStore stores and verifies per-user transaction PINs
type PinStore interface {
	Set(userID string, pin string) error
	Verify(userID string, pin string) error
}

// pinStore gorm-backed PIN store
type pinStore struct {
	db *gorm.DB
}

// NewPinStore creates a PIN store
func NewPinStore(db *gorm.DB) PinStore {
	return &pinStore{db: db}
}

// Set hashes and stores the PIN for the user
func (s *pinStore) Set(userID string, pin string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	record := &model.UserPinModel{
		UserID:  userID,
		PinHash: string(hash),
	}
	return s.db.Save(record).Error
}

// Verify compares the supplied PIN against the stored hash
func (s *pinStore) Verify(userID string, pin string) error {
	var record model.UserPinModel
	if err := s.db.Where("user_id = ?", userID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPinNotSet
		}
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(record.PinHash), []byte(pin)); err != nil {
		return ErrPinMismatch
	}
	return nil
}

// RequirePinMiddleware gates sensitive transactions behind PIN verification
func RequirePinMiddleware(store PinStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "unauthorized",
			})
			c.Abort()
			return
		}

		pin := c.GetHeader(PinHeader)
		if pin == "" {
			c.JSON(http.StatusForbidden, gin.H{
				"code":    403,
				"message": "transaction PIN required",
			})
			c.Abort()
			return
		}

		if err := store.Verify(principal.ID, pin); err != nil {
			status := http.StatusForbidden
			message := "invalid transaction PIN"
			if errors.Is(err, ErrPinNotSet) {
				message = "transaction PIN not set"
			} else if !errors.Is(err, ErrPinMismatch) {
				status = http.StatusInternalServerError
				message = "failed to verify transaction PIN"
			}
			c.JSON(status, gin.H{
				"code":    status,
				"message": message,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
