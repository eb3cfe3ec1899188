package idp

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"

	"github.com/dropDatabas3/accountsd/internal/domain"
)

const (
	attrEmail         = "email"
	attrName          = "name"
	attrSub           = "sub"
	attrEmailVerified = "email_verified"
)

func attr(name, value string) types.AttributeType {
	return types.AttributeType{Name: aws.String(name), Value: aws.String(value)}
}

func toRecord(username string, attrs []types.AttributeType, created, modified *time.Time, enabled bool, status types.UserStatusType) domain.IdentityRecord {
	rec := domain.IdentityRecord{
		Username: username,
		Enabled:  enabled,
		Status:   string(status),
	}
	if rec.Status == "" {
		rec.Status = domain.StatusUnknown
	}
	if created != nil {
		rec.CreatedAt = created.UTC()
	}
	if modified != nil {
		rec.LastModifiedAt = modified.UTC()
	}
	for _, a := range attrs {
		v := aws.ToString(a.Value)
		switch aws.ToString(a.Name) {
		case attrEmail:
			rec.Email = v
		case attrName:
			rec.DisplayName = v
		case attrSub:
			rec.SubjectID = v
		case attrEmailVerified:
			rec.EmailVerified = v == "true"
		}
	}
	return rec
}

func fromUserType(u types.UserType) domain.IdentityRecord {
	return toRecord(aws.ToString(u.Username), u.Attributes, u.UserCreateDate, u.UserLastModifiedDate, u.Enabled, u.UserStatus)
}
