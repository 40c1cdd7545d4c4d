package shop

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"telebot-admin/internal/config"
	"telebot-admin/internal/platform"

	"go.uber.org/zap"
)

func testService(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := platform.NewClient(server.URL, config.Endpoints{Shop: "shop"})
	return NewService(client, zap.NewNop())
}

func TestCreateCategoryRequiresName(t *testing.T) {
	svc := NewService(nil, zap.NewNop())

	_, err := svc.CreateCategory(context.Background(), platform.ShopCategory{BotID: 1})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if validation.Message != "Укажите название категории" {
		t.Errorf("message = %q", validation.Message)
	}
}

func TestCreateProductValidation(t *testing.T) {
	svc := NewService(nil, zap.NewNop())

	cases := []struct {
		name    string
		product platform.ShopProduct
		want    string
	}{
		{"empty name", platform.ShopProduct{Price: 100}, "Укажите название товара"},
		{"negative price", platform.ShopProduct{Name: "Чай", Price: -1}, "Цена не может быть отрицательной"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateProduct(context.Background(), tc.product)
			var validation *ValidationError
			if !errors.As(err, &validation) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if validation.Message != tc.want {
				t.Errorf("message = %q, want %q", validation.Message, tc.want)
			}
		})
	}
}

func TestCreateProduct(t *testing.T) {
	var body map[string]interface{}
	svc := testService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/shop" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"product": map[string]interface{}{"id": 9, "name": "Чай", "price": 250},
		})
	})

	created, err := svc.CreateProduct(context.Background(), platform.ShopProduct{
		BotID: 1, CategoryID: 2, Name: "Чай", Price: 250,
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if body["type"] != "product" || body["name"] != "Чай" {
		t.Errorf("request body = %v", body)
	}
	if created.ID != 9 {
		t.Errorf("created = %+v", created)
	}
}

func TestUpdateProductSparsePayload(t *testing.T) {
	var body map[string]interface{}
	svc := testService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	})

	err := svc.UpdateProduct(context.Background(), 9, map[string]interface{}{"price": float64(300)})
	if err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}
	if len(body) != 2 || body["id"] != float64(9) || body["price"] != float64(300) {
		t.Errorf("payload = %v, want only id and price", body)
	}
}

func TestUpdateProductRejectsClearingName(t *testing.T) {
	svc := NewService(nil, zap.NewNop())
	err := svc.UpdateProduct(context.Background(), 9, map[string]interface{}{"name": ""})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}
