package database

import (
	"log"
	"sync"

	"github.com/gocql/gocql"
)

var (
	// Prepared statements pour les requêtes chaudes du cycle de commande
	stmtGetOrderByCart  *gocql.Query
	stmtGetPromoByCode  *gocql.Query
	stmtGetWalletByUser *gocql.Query

	preparedOnce sync.Once
)

// InitPreparedStatements initialise les prepared statements
func InitPreparedStatements() {
	preparedOnce.Do(func() {
		ordersSession, err := GetOrdersSession()
		if err != nil {
			log.Printf("⚠️ Impossible d'initialiser les prepared statements (orders): %v", err)
			return
		}

		stmtGetOrderByCart = ordersSession.Query("SELECT order_id FROM orders_by_cart WHERE cart_id = ?")

		stmtGetPromoByCode = ordersSession.Query(`SELECT id, code, discount_type, discount_value,
			min_order_amount, expires_at, is_active, created_at FROM promo_codes WHERE code = ?`)

		marketSession, err := GetMarketSession()
		if err != nil {
			log.Printf("⚠️ Impossible d'initialiser les prepared statements (market): %v", err)
			return
		}

		stmtGetWalletByUser = marketSession.Query("SELECT wallet_id FROM wallets_by_user WHERE user_id = ?")

		log.Println("✅ Prepared statements initialisés")
	})
}

func GetPreparedGetOrderByCart() *gocql.Query {
	return stmtGetOrderByCart
}

func GetPreparedGetPromoByCode() *gocql.Query {
	return stmtGetPromoByCode
}

func GetPreparedGetWalletByUser() *gocql.Query {
	return stmtGetWalletByUser
}
