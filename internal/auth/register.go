package auth

import (
	"context"
	"strings"

	"github.com/damsoledevelopers/spireleap-console/pkg/enums"
	pkgerrors "github.com/damsoledevelopers/spireleap-console/pkg/errors"
)

// Register signs up through the CRM. Accounts that come back inactive are
// pending approval and land on the public page regardless of role.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*Snapshot, error) {
	payload, err := registrationPayload(req)
	if err != nil {
		return nil, err
	}
	reply, err := s.crm.Register(ctx, payload)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(reply.Token) == "" {
		user := reply.User
		return &Snapshot{User: &user, Permissions: emptySnapshot().Permissions, Redirect: LandingPath}, nil
	}
	snap, err := s.start(ctx, reply)
	if err != nil {
		return nil, err
	}
	snap.Redirect = LandingPath
	if snap.User.IsActive {
		snap.Redirect = DashboardFor(snap.User.Role)
	}
	return snap, nil
}

// registrationPayload drops the confirmation field and leaves out optional
// relations the operator did not fill in.
func registrationPayload(req RegisterRequest) (map[string]any, error) {
	if req.Password != req.ConfirmPassword {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Passwords do not match")
	}
	payload := map[string]any{
		"firstName": strings.TrimSpace(req.FirstName),
		"lastName":  strings.TrimSpace(req.LastName),
		"email":     strings.ToLower(strings.TrimSpace(req.Email)),
		"password":  req.Password,
	}
	if role := strings.TrimSpace(req.Role); role != "" {
		if !enums.UserRole(role).IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "Please select a valid role")
		}
		payload["role"] = role
	}
	if phone := strings.TrimSpace(req.Phone); phone != "" {
		payload["phone"] = phone
	}
	if agency := strings.TrimSpace(req.Agency); agency != "" {
		payload["agency"] = agency
	}
	if address := cleanAddress(req.Address); len(address) > 0 {
		payload["address"] = address
	}
	return payload, nil
}

func cleanAddress(in *AddressInput) map[string]string {
	out := map[string]string{}
	if in == nil {
		return out
	}
	fields := map[string]string{
		"street":  in.Street,
		"city":    in.City,
		"state":   in.State,
		"country": in.Country,
		"zipCode": in.ZipCode,
	}
	for k, v := range fields {
		if v = strings.TrimSpace(v); v != "" {
			out[k] = v
		}
	}
	return out
}
