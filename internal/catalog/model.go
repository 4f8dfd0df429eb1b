package catalog

// Product — товар каталога. Для ядра он read-only: корзина хранит только
// productId, а все поля товара берутся из актуального снапшота каталога.
type Product struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	Price      string   `json:"price"` // Десятичная строка, разделитель может быть ',' или '.'
	OldPrice   string   `json:"oldPrice,omitempty"`
	Images     []string `json:"images"`
	Categories []string `json:"categories"`
}

// Snapshot — целиком загруженное состояние каталога. Снапшот неизменяем:
// обновление каталога всегда означает замену снапшота целиком.
type Snapshot struct {
	Products   []Product
	Categories []string

	byID map[int64]int // индекс в Products
}

func NewSnapshot(products []Product, categories []string) *Snapshot {
	snap := &Snapshot{
		Products:   products,
		Categories: categories,
		byID:       make(map[int64]int, len(products)),
	}
	for i := range products {
		snap.byID[products[i].ID] = i
	}

	return snap
}

// Product возвращает товар по id. Безопасен для nil-снапшота: пока каталог
// ни разу не загружался, любой товар считается отсутствующим.
func (s *Snapshot) Product(id int64) (Product, bool) {
	if s == nil {
		return Product{}, false
	}

	i, ok := s.byID[id]
	if !ok {
		return Product{}, false
	}

	return s.Products[i], true
}
