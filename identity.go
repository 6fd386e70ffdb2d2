package auth

type authIdentity struct {
	id    string
	email string
}

func (a authIdentity) ID() string {
	return a.id
}

func (a authIdentity) Email() string {
	return a.email
}

var _ Identity = authIdentity{}

// IdentityFromUser adapts a stored User into the token layer's Identity view.
func IdentityFromUser(user *User) Identity {
	if user == nil {
		return nil
	}
	return authIdentity{
		id:    user.ID.String(),
		email: user.Email,
	}
}
