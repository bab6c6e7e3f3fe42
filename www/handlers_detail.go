package www

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/shift"
	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/snapshot"
	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/store"
)

// Detail responses pair a stored entity with its latest sample from the
// current snapshot and resolve the ids that sample references.

type robotDetail struct {
	Robot  shift.Robot           `json:"robot"`
	Latest *shift.RobotTelemetry `json:"latest"`
	Cart   *shift.Cart           `json:"assigned_cart"`
}

type pickerDetail struct {
	Picker shift.Picker          `json:"picker"`
	Latest *shift.PickerActivity `json:"latest"`
	Carts  []shift.Cart          `json:"assigned_carts"`
	Orders []shift.Order         `json:"open_orders"`
}

type cartDetail struct {
	Cart   shift.Cart          `json:"cart"`
	Latest *shift.CartMovement `json:"latest"`
	Picker *shift.Picker       `json:"assigned_picker"`
	Robot  *shift.Robot        `json:"assigned_robot"`
}

type orderDetail struct {
	Order  shift.Order       `json:"order"`
	Latest *shift.OrderEvent `json:"latest"`
	Picker *shift.Picker     `json:"assigned_picker"`
}

func (h *Handlers) apiRobot(w http.ResponseWriter, r *http.Request) {
	robot, snap, ok := lookup(h, w, r, h.engine.DB().Robot)
	if !ok {
		return
	}
	resp := robotDetail{Robot: robot, Latest: latestFor(snap.RobotTelemetry, robot.ID)}
	if resp.Latest != nil {
		resp.Cart = found(snap.Roster().Cart(resp.Latest.AssignedCart))
	}
	h.jsonOK(w, resp)
}

func (h *Handlers) apiPicker(w http.ResponseWriter, r *http.Request) {
	picker, snap, ok := lookup(h, w, r, h.engine.DB().Picker)
	if !ok {
		return
	}
	roster := snap.Roster()
	resp := pickerDetail{
		Picker: picker,
		Latest: latestFor(snap.PickerActivity, picker.ID),
		Carts:  []shift.Cart{},
		Orders: []shift.Order{},
	}
	if resp.Latest != nil && resp.Latest.AssignedCarts != "" {
		seen := map[string]bool{}
		for _, id := range strings.Split(resp.Latest.AssignedCarts, ",") {
			if c, ok := roster.Cart(id); ok && !seen[id] {
				seen[id] = true
				resp.Carts = append(resp.Carts, c)
			}
		}
	}
	for _, e := range snap.OrderEvents {
		if e.AssignedPicker != picker.ID || e.Status == shift.OrderPacked {
			continue
		}
		if o, ok := roster.Order(e.OrderID); ok {
			resp.Orders = append(resp.Orders, o)
		}
	}
	h.jsonOK(w, resp)
}

func (h *Handlers) apiCart(w http.ResponseWriter, r *http.Request) {
	cart, snap, ok := lookup(h, w, r, h.engine.DB().Cart)
	if !ok {
		return
	}
	resp := cartDetail{Cart: cart, Latest: latestFor(snap.CartMovement, cart.ID)}
	if resp.Latest != nil {
		roster := snap.Roster()
		resp.Picker = found(roster.Picker(resp.Latest.AssignedPicker))
		resp.Robot = found(roster.Robot(resp.Latest.AssignedRobot))
	}
	h.jsonOK(w, resp)
}

func (h *Handlers) apiOrder(w http.ResponseWriter, r *http.Request) {
	order, snap, ok := lookup(h, w, r, h.engine.DB().Order)
	if !ok {
		return
	}
	resp := orderDetail{Order: order, Latest: latestFor(snap.OrderEvents, order.ID)}
	resp.Picker = found(snap.Roster().Picker(order.AssignedPicker))
	h.jsonOK(w, resp)
}

// lookup loads the entity named by the id URL parameter along with the
// current snapshot. It writes a 404 for an unknown id and a 500 for any
// other failure.
func lookup[T any](h *Handlers, w http.ResponseWriter, r *http.Request,
	get func(context.Context, string) (T, error)) (T, *snapshot.Snapshot, bool) {
	var zero T
	id := chi.URLParam(r, "id")
	v, err := get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		h.jsonError(w, "not found: "+id, http.StatusNotFound)
		return zero, nil, false
	}
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return zero, nil, false
	}
	snap, err := h.engine.Builder().Snapshot(r.Context())
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return zero, nil, false
	}
	return v, snap, true
}

func latestFor[S interface{ EntityID() string }](samples []S, id string) *S {
	for i := range samples {
		if samples[i].EntityID() == id {
			return &samples[i]
		}
	}
	return nil
}

func found[T any](v T, ok bool) *T {
	if !ok {
		return nil
	}
	return &v
}
