package models

// LineItem is one cart row. Product points into the catalog rather than
// holding a copy.
type LineItem struct {
	Product  *Product
	Quantity int
}

// Subtotal is the line price times its quantity.
func (li LineItem) Subtotal() int64 {
	return li.Product.Price * int64(li.Quantity)
}

type CartEventKind string

const (
	CartItemAdded         CartEventKind = "item_added"
	CartItemUpdated       CartEventKind = "item_updated"
	CartItemRemoved       CartEventKind = "item_removed"
	CartCleared           CartEventKind = "cleared"
	CartVisibilityChanged CartEventKind = "visibility_changed"
)

// CartEvent describes a change that has already been applied to a cart.
type CartEvent struct {
	Kind      CartEventKind
	ProductID string
	ItemCount int
	Total     int64
	Open      bool
}

// Cart holds the line items of a single shopping session.
//
// A Cart has exactly one owner and is not safe for concurrent use; the owner
// serialises access. Dependent views register with Subscribe and are called
// synchronously after every change. Calls that change nothing emit nothing.
type Cart struct {
	items       []LineItem
	open        bool
	subscribers map[int]func(CartEvent)
	nextSubID   int
}

func NewCart() *Cart {
	return &Cart{subscribers: make(map[int]func(CartEvent))}
}

// Subscribe registers fn for change notifications. The returned func removes it.
func (c *Cart) Subscribe(fn func(CartEvent)) (unsubscribe func()) {
	if c.subscribers == nil {
		c.subscribers = make(map[int]func(CartEvent))
	}
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn
	return func() { delete(c.subscribers, id) }
}

// Add puts one unit of product in the cart, merging with an existing line.
func (c *Cart) Add(product *Product) {
	if i := c.indexOf(product.ID); i >= 0 {
		c.items[i].Quantity++
	} else {
		c.items = append(c.items, LineItem{Product: product, Quantity: 1})
	}
	c.emit(CartItemAdded, product.ID)
}

// AddQuantity adds n units, one Add at a time.
func (c *Cart) AddQuantity(product *Product, n int) {
	for i := 0; i < n; i++ {
		c.Add(product)
	}
}

// UpdateQuantity sets the quantity of an existing line. A quantity below one
// removes the line. Unknown products are ignored.
func (c *Cart) UpdateQuantity(productID string, quantity int) {
	if quantity < 1 {
		c.Remove(productID)
		return
	}
	i := c.indexOf(productID)
	if i < 0 || c.items[i].Quantity == quantity {
		return
	}
	c.items[i].Quantity = quantity
	c.emit(CartItemUpdated, productID)
}

func (c *Cart) Remove(productID string) {
	i := c.indexOf(productID)
	if i < 0 {
		return
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	c.emit(CartItemRemoved, productID)
}

func (c *Cart) Clear() {
	if len(c.items) == 0 {
		return
	}
	c.items = nil
	c.emit(CartCleared, "")
}

// Clone copies the lines and visibility into a new cart with no subscribers.
func (c *Cart) Clone() *Cart {
	out := NewCart()
	out.items = c.Items()
	out.open = c.open
	return out
}

// Items returns a copy of the line items in insertion order.
func (c *Cart) Items() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Len() int { return len(c.items) }

// TotalItemCount is the sum of quantities, not the number of distinct products.
func (c *Cart) TotalItemCount() int {
	n := 0
	for _, li := range c.items {
		n += li.Quantity
	}
	return n
}

func (c *Cart) TotalPrice() int64 {
	var total int64
	for _, li := range c.items {
		total += li.Subtotal()
	}
	return total
}

func (c *Cart) IsOpen() bool { return c.open }

func (c *Cart) Open() { c.setOpen(true) }

func (c *Cart) Close() { c.setOpen(false) }

func (c *Cart) Toggle() { c.setOpen(!c.open) }

func (c *Cart) setOpen(open bool) {
	if c.open == open {
		return
	}
	c.open = open
	c.emit(CartVisibilityChanged, "")
}

func (c *Cart) indexOf(productID string) int {
	for i := range c.items {
		if c.items[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) emit(kind CartEventKind, productID string) {
	if len(c.subscribers) == 0 {
		return
	}
	ev := CartEvent{
		Kind:      kind,
		ProductID: productID,
		ItemCount: c.TotalItemCount(),
		Total:     c.TotalPrice(),
		Open:      c.open,
	}
	for _, fn := range c.subscribers {
		fn(ev)
	}
}
