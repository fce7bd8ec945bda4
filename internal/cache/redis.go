package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"isoko_back_end/internal/database"
	"isoko_back_end/internal/models"

	"github.com/redis/go-redis/v9"
)

var ctx = context.Background()

// --- Paniers ---

// GetCart récupère un panier depuis Redis (clé "cart:<id>")
func GetCart(cartID string) (*models.Cart, error) {
	data, err := database.Redis.Get(ctx, "cart:"+cartID).Result()
	if err != nil {
		return nil, err
	}

	var cart models.Cart
	if err := json.Unmarshal([]byte(data), &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// DeleteCart supprime le panier une fois la commande créée
func DeleteCart(cartID string) error {
	return database.Redis.Del(ctx, "cart:"+cartID).Err()
}

// --- Verrou de checkout par panier ---
// Deux checkouts concurrents sur le même panier ne doivent jamais aboutir
// tous les deux : SET NX sérialise, le TTL évite un verrou orphelin

func AcquireCheckoutLock(cartID string) (bool, error) {
	key := "checkout_lock:" + cartID
	return database.Redis.SetNX(ctx, key, "1", 30*time.Second).Result()
}

func ReleaseCheckoutLock(cartID string) {
	database.Redis.Del(ctx, "checkout_lock:"+cartID)
}

// --- Sessions de checkout (OTP voucher) ---

// StoreCheckoutSession stocke une session avec le TTL configuré.
// Passé ce délai la clé disparaît : la session est EXPIRED
func StoreCheckoutSession(session *models.CheckoutSession, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	key := "checkout_session:" + session.ID
	return database.Redis.Set(ctx, key, data, ttl).Err()
}

// GetCheckoutSession retourne la session, ou redis.Nil si expirée/inexistante
func GetCheckoutSession(sessionID string) (*models.CheckoutSession, error) {
	data, err := database.Redis.Get(ctx, "checkout_session:"+sessionID).Result()
	if err != nil {
		return nil, err
	}

	var session models.CheckoutSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func DeleteCheckoutSession(sessionID string) error {
	return database.Redis.Del(ctx, "checkout_session:"+sessionID).Err()
}

func IsNil(err error) bool {
	return err == redis.Nil
}

// --- Tentatives OTP (verrouillage anti brute-force) ---
// Même mécanique compteur + cooldown que le rate limit de connexion

// OtpLocked vérifie si la cible est en cooldown ; retourne le TTL restant
func OtpLocked(scope, id string) (bool, time.Duration) {
	key := fmt.Sprintf("otp_lock:%s:%s", scope, id)
	if database.Redis.Exists(ctx, key).Val() > 0 {
		return true, database.Redis.TTL(ctx, key).Val()
	}
	return false, 0
}

// OtpFailed incrémente le compteur d'échecs ; au-delà de maxAttempts,
// pose le cooldown et remet le compteur à zéro. Retourne les essais restants
func OtpFailed(scope, id string, maxAttempts int, lockout time.Duration) int {
	key := fmt.Sprintf("otp_attempts:%s:%s", scope, id)

	pipe := database.Redis.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, lockout)
	if _, err := pipe.Exec(ctx); err != nil {
		return maxAttempts
	}

	attempts := int(incr.Val())
	if attempts >= maxAttempts {
		database.Redis.Set(ctx, fmt.Sprintf("otp_lock:%s:%s", scope, id), "1", lockout)
		database.Redis.Del(ctx, key)
		return 0
	}
	return maxAttempts - attempts
}

// OtpSucceeded réinitialise compteur et verrou après une vérification réussie
func OtpSucceeded(scope, id string) {
	database.Redis.Del(ctx, fmt.Sprintf("otp_attempts:%s:%s", scope, id))
	database.Redis.Del(ctx, fmt.Sprintf("otp_lock:%s:%s", scope, id))
}

// --- Rate Limiting Global ---

// IncrementRateLimit incrémente le compteur de rate limit
func IncrementRateLimit(key string, window time.Duration) (int64, error) {
	pipe := database.Redis.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	_, err := pipe.Exec(ctx)
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
