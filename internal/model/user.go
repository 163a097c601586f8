// internal/model/user.go
package model

type Capability string

const (
	CapViewAll        Capability = "view_all"
	CapCancelCampaign Capability = "cancel_campaign"
	CapBlockUser      Capability = "block_user"
	CapRunDispatch    Capability = "run_dispatch"
)

type User struct {
	ID        int    `db:"id" json:"id"`
	Email     string `db:"email" json:"email"`
	IsActive  bool   `db:"is_active" json:"is_active"`
	IsManager bool   `db:"is_manager" json:"is_manager"`
}

func (u *User) UserID() int {
	if u == nil {
		return 0
	}
	return u.ID
}

// HasCapability reports whether the user may perform a privileged action.
// Every capability belongs to the manager role.
func (u *User) HasCapability(c Capability) bool {
	if u == nil || !u.IsActive {
		return false
	}
	switch c {
	case CapViewAll, CapCancelCampaign, CapBlockUser, CapRunDispatch:
		return u.IsManager
	}
	return false
}
