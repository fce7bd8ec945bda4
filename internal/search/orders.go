package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"isoko_back_end/internal/database"
	"isoko_back_end/internal/models"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

//
// --- INDEXATION DANS ELASTICSEARCH ---
//

// orderDoc : projection plate d'une commande pour la recherche opérateur
type orderDoc struct {
	OrderID      string  `json:"order_id"`
	OrderNumber  string  `json:"order_number"`
	BillingName  string  `json:"billing_name"`
	BillingPhone string  `json:"billing_phone"`
	RestaurantID string  `json:"restaurant_id"`
	Status       string  `json:"status"`
	Payment      string  `json:"payment_method"`
	Total        float64 `json:"total_amount"`
	CreatedAt    string  `json:"created_at"`
}

// IndexOrder indexe une commande (appelé à la création et à chaque changement de statut)
func IndexOrder(o models.Order) {
	if database.Elastic == nil {
		return
	}

	doc := orderDoc{
		OrderID:      o.ID.String(),
		OrderNumber:  o.OrderNumber,
		BillingName:  o.BillingName,
		BillingPhone: o.BillingPhone,
		RestaurantID: o.RestaurantID,
		Status:       o.Status,
		Payment:      o.PaymentMethod,
		Total:        o.TotalAmount,
		CreatedAt:    o.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}

	data, _ := json.Marshal(doc)
	req := esapi.IndexRequest{
		Index:      "orders",
		DocumentID: doc.OrderID,
		Body:       bytes.NewReader(data),
		Refresh:    "true",
	}

	res, err := req.Do(context.Background(), database.Elastic)
	if err != nil {
		log.Println("❌ Erreur envoi Elastic:", err)
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Printf("⚠️ Elastic a renvoyé une erreur pour %s: %s", doc.OrderNumber, res.String())
	}
}

//
// --- RECHERCHE DANS ELASTICSEARCH ---
//

// SearchOrders : recherche opérateur par numéro de commande, nom ou téléphone
func SearchOrders(query string) ([]map[string]interface{}, error) {
	if database.Elastic == nil {
		return nil, errors.New("client Elasticsearch non initialisé")
	}

	var buf bytes.Buffer
	q := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"order_number", "billing_name", "billing_phone"},
			},
		},
	}

	if err := json.NewEncoder(&buf).Encode(q); err != nil {
		return nil, fmt.Errorf("erreur encodage requête: %v", err)
	}

	req := esapi.SearchRequest{
		Index: []string{"orders"},
		Body:  &buf,
	}
	res, err := req.Do(context.Background(), database.Elastic)
	if err != nil {
		return nil, fmt.Errorf("erreur requête Elastic: %v", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		var e map[string]interface{}
		json.NewDecoder(res.Body).Decode(&e)
		log.Printf("❌ Elasticsearch erreur: %+v", e)
		return nil, errors.New("index non trouvé ou vide")
	}

	var r map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("erreur décodage JSON: %v", err)
	}

	hitsData, ok := r["hits"].(map[string]interface{})
	if !ok {
		return nil, errors.New("réponse Elastic invalide (pas de hits)")
	}

	hitsArray, ok := hitsData["hits"].([]interface{})
	if !ok {
		return nil, errors.New("aucun résultat trouvé")
	}

	results := make([]map[string]interface{}, 0, len(hitsArray))
	for _, hit := range hitsArray {
		hitMap, _ := hit.(map[string]interface{})
		if source, ok := hitMap["_source"].(map[string]interface{}); ok {
			results = append(results, source)
		}
	}

	return results, nil
}
