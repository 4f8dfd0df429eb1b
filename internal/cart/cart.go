package cart

import "encoding/json"

// GuestKey — ключ корзины для неавторизованного посетителя.
const GuestKey = "cart:guest"

// legacyKey — старый неймспейс, когда корзина хранилась одним ключом на
// устройство, плоским списком товаров без количества. Поддерживается
// только как источник одноразовой миграции.
const legacyKey = "cart"

// Row — строка корзины. На один productId всегда не больше одной строки,
// qty в сохранённой корзине всегда >= 1.
type Row struct {
	ProductID int64 `json:"productId"`
	Qty       int   `json:"qty"`
}

// Key возвращает ключ корзины для телефона пользователя. Пустой телефон
// означает гостя.
func Key(phone string) string {
	if phone == "" {
		return GuestKey
	}

	return "cart:" + phone
}

// persistedRow покрывает обе формы хранения: текущую ({productId, qty})
// и легаси-объект товара ({id, ...} без qty).
type persistedRow struct {
	ProductID int64 `json:"productId"`
	ID        int64 `json:"id"`
	Qty       *int  `json:"qty"`
}

// decodeRows разбирает сохранённый блоб корзины. Битый JSON означает
// "корзины нет" — пустой результат, а не ошибка. Второе возвращаемое
// значение — признак легаси-формы (ни у одной записи нет поля qty).
func decodeRows(data []byte) ([]Row, bool) {
	if len(data) == 0 {
		return nil, false
	}

	var persisted []persistedRow
	if err := json.Unmarshal(data, &persisted); err != nil {
		return nil, false
	}
	if len(persisted) == 0 {
		return nil, false
	}

	legacy := true
	for _, p := range persisted {
		if p.Qty != nil {
			legacy = false
			break
		}
	}

	if legacy {
		return tallyLegacy(persisted), true
	}

	rows := make([]Row, 0, len(persisted))
	for _, p := range persisted {
		if p.Qty == nil || *p.Qty <= 0 {
			continue
		}
		rows = append(rows, Row{ProductID: p.ProductID, Qty: *p.Qty})
	}

	return rows, false
}

// tallyLegacy сворачивает плоский список товаров в строки с количеством:
// повторы одного id складываются. Порядок — по первому появлению.
func tallyLegacy(persisted []persistedRow) []Row {
	counts := make(map[int64]int, len(persisted))
	order := make([]int64, 0, len(persisted))

	for _, p := range persisted {
		id := p.ID
		if id == 0 {
			id = p.ProductID
		}
		if id == 0 {
			continue
		}
		if counts[id] == 0 {
			order = append(order, id)
		}
		counts[id]++
	}

	rows := make([]Row, 0, len(order))
	for _, id := range order {
		rows = append(rows, Row{ProductID: id, Qty: counts[id]})
	}

	return rows
}
