package shift

// Roster indexes static entities by id so soft references carried in
// samples (assigned cart, picker, robot) can be resolved without owning
// pointers between records.
type Roster struct {
	robots  map[string]Robot
	pickers map[string]Picker
	carts   map[string]Cart
	orders  map[string]Order
}

// NewRoster indexes the given entities. Later duplicates of an id replace
// earlier ones.
func NewRoster(robots []Robot, pickers []Picker, carts []Cart, orders []Order) *Roster {
	r := &Roster{
		robots:  make(map[string]Robot, len(robots)),
		pickers: make(map[string]Picker, len(pickers)),
		carts:   make(map[string]Cart, len(carts)),
		orders:  make(map[string]Order, len(orders)),
	}
	for _, v := range robots {
		r.robots[v.ID] = v
	}
	for _, v := range pickers {
		r.pickers[v.ID] = v
	}
	for _, v := range carts {
		r.carts[v.ID] = v
	}
	for _, v := range orders {
		r.orders[v.ID] = v
	}
	return r
}

// Robot resolves a robot id. An empty or unknown id reports false.
func (r *Roster) Robot(id string) (Robot, bool) {
	v, ok := r.robots[id]
	return v, ok
}

func (r *Roster) Picker(id string) (Picker, bool) {
	v, ok := r.pickers[id]
	return v, ok
}

func (r *Roster) Cart(id string) (Cart, bool) {
	v, ok := r.carts[id]
	return v, ok
}

func (r *Roster) Order(id string) (Order, bool) {
	v, ok := r.orders[id]
	return v, ok
}
