package idp

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/aws/smithy-go"
)

// fakeCognito es un pool en memoria con hooks de error por operación.
type fakeCognito struct {
	mu    sync.Mutex
	users map[string]*types.UserType
	pass  map[string]string
	errs  map[string]error
	calls []string

	lastCreate *cip.AdminCreateUserInput
	lastAuth   *cip.InitiateAuthInput
	lastList   *cip.ListUsersInput
}

func newFakeCognito() *fakeCognito {
	return &fakeCognito{
		users: map[string]*types.UserType{},
		pass:  map[string]string{},
		errs:  map[string]error{},
	}
}

func apiErr(code string) error {
	return &smithy.GenericAPIError{Code: code, Message: code}
}

func (f *fakeCognito) hit(op string) error {
	f.calls = append(f.calls, op)
	return f.errs[op]
}

func (f *fakeCognito) AdminCreateUser(_ context.Context, in *cip.AdminCreateUserInput, _ ...func(*cip.Options)) (*cip.AdminCreateUserOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastCreate = in
	if err := f.hit("AdminCreateUser"); err != nil {
		return nil, err
	}
	name := aws.ToString(in.Username)
	if _, ok := f.users[name]; ok {
		return nil, apiErr(codeUsernameExists)
	}
	now := time.Now()
	attrs := append([]types.AttributeType{attr(attrSub, "sub-"+name)}, in.UserAttributes...)
	u := &types.UserType{
		Username: in.Username, Attributes: attrs, Enabled: true,
		UserStatus: types.UserStatusTypeForceChangePassword, UserCreateDate: &now, UserLastModifiedDate: &now,
	}
	f.users[name] = u
	f.pass[name] = aws.ToString(in.TemporaryPassword)
	return &cip.AdminCreateUserOutput{User: u}, nil
}

func (f *fakeCognito) AdminGetUser(_ context.Context, in *cip.AdminGetUserInput, _ ...func(*cip.Options)) (*cip.AdminGetUserOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("AdminGetUser"); err != nil {
		return nil, err
	}
	u, ok := f.users[aws.ToString(in.Username)]
	if !ok {
		return nil, apiErr(codeUserNotFound)
	}
	return &cip.AdminGetUserOutput{
		Username: u.Username, UserAttributes: u.Attributes, Enabled: u.Enabled, UserStatus: u.UserStatus,
		UserCreateDate: u.UserCreateDate, UserLastModifiedDate: u.UserLastModifiedDate,
	}, nil
}

func (f *fakeCognito) AdminDeleteUser(_ context.Context, in *cip.AdminDeleteUserInput, _ ...func(*cip.Options)) (*cip.AdminDeleteUserOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("AdminDeleteUser"); err != nil {
		return nil, err
	}
	name := aws.ToString(in.Username)
	if _, ok := f.users[name]; !ok {
		return nil, apiErr(codeUserNotFound)
	}
	delete(f.users, name)
	return &cip.AdminDeleteUserOutput{}, nil
}

func (f *fakeCognito) AdminUpdateUserAttributes(_ context.Context, in *cip.AdminUpdateUserAttributesInput, _ ...func(*cip.Options)) (*cip.AdminUpdateUserAttributesOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("AdminUpdateUserAttributes"); err != nil {
		return nil, err
	}
	u, ok := f.users[aws.ToString(in.Username)]
	if !ok {
		return nil, apiErr(codeUserNotFound)
	}
	for _, a := range in.UserAttributes {
		replaced := false
		for i := range u.Attributes {
			if aws.ToString(u.Attributes[i].Name) == aws.ToString(a.Name) {
				u.Attributes[i].Value = a.Value
				replaced = true
			}
		}
		if !replaced {
			u.Attributes = append(u.Attributes, a)
		}
	}
	return &cip.AdminUpdateUserAttributesOutput{}, nil
}

func (f *fakeCognito) setEnabled(name string, v bool) error {
	u, ok := f.users[name]
	if !ok {
		return apiErr(codeUserNotFound)
	}
	u.Enabled = v
	return nil
}

func (f *fakeCognito) AdminEnableUser(_ context.Context, in *cip.AdminEnableUserInput, _ ...func(*cip.Options)) (*cip.AdminEnableUserOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("AdminEnableUser"); err != nil {
		return nil, err
	}
	return &cip.AdminEnableUserOutput{}, f.setEnabled(aws.ToString(in.Username), true)
}

func (f *fakeCognito) AdminDisableUser(_ context.Context, in *cip.AdminDisableUserInput, _ ...func(*cip.Options)) (*cip.AdminDisableUserOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("AdminDisableUser"); err != nil {
		return nil, err
	}
	return &cip.AdminDisableUserOutput{}, f.setEnabled(aws.ToString(in.Username), false)
}

func (f *fakeCognito) AdminSetUserPassword(_ context.Context, in *cip.AdminSetUserPasswordInput, _ ...func(*cip.Options)) (*cip.AdminSetUserPasswordOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("AdminSetUserPassword"); err != nil {
		return nil, err
	}
	name := aws.ToString(in.Username)
	u, ok := f.users[name]
	if !ok {
		return nil, apiErr(codeUserNotFound)
	}
	f.pass[name] = aws.ToString(in.Password)
	if in.Permanent {
		u.UserStatus = types.UserStatusTypeConfirmed
	}
	return &cip.AdminSetUserPasswordOutput{}, nil
}

func (f *fakeCognito) ListUsers(_ context.Context, in *cip.ListUsersInput, _ ...func(*cip.Options)) (*cip.ListUsersOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastList = in
	if err := f.hit("ListUsers"); err != nil {
		return nil, err
	}
	out := &cip.ListUsersOutput{}
	for _, u := range f.users {
		if in.Filter != nil {
			rec := fromUserType(*u)
			if aws.ToString(in.Filter) != `email = "`+rec.Email+`"` {
				continue
			}
		}
		out.Users = append(out.Users, *u)
		if in.Limit != nil && int32(len(out.Users)) >= *in.Limit {
			break
		}
	}
	return out, nil
}

func (f *fakeCognito) InitiateAuth(_ context.Context, in *cip.InitiateAuthInput, _ ...func(*cip.Options)) (*cip.InitiateAuthOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastAuth = in
	if err := f.hit("InitiateAuth"); err != nil {
		return nil, err
	}
	name := in.AuthParameters["USERNAME"]
	if _, ok := f.users[name]; !ok {
		return nil, apiErr(codeUserNotFound)
	}
	if f.pass[name] != in.AuthParameters["PASSWORD"] {
		return nil, apiErr(codeNotAuthorized)
	}
	return &cip.InitiateAuthOutput{}, nil
}
