package schema

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/nodestore/internal/common"
	"github.com/dmitrijs2005/nodestore/internal/models"
)

var attributeFieldTypes = map[models.AttributeType]models.FieldType{
	models.AttributeString:   models.FieldString,
	models.AttributeDateTime: models.FieldDateTime,
	models.AttributeDate:     models.FieldDate,
	models.AttributeBoolean:  models.FieldBoolean,
	models.AttributeInteger:  models.FieldInteger,
	models.AttributeDecimal:  models.FieldDecimal,
	models.AttributePercent:  models.FieldDecimal,
	models.AttributeEmail:    models.FieldEmail,
	models.AttributeColour:   models.FieldColour,
	models.AttributeEnum:     models.FieldEnum,
	models.AttributeCountry:  models.FieldCountry,
}

// CoerceAttributeValue checks raw against the attribute type and returns its
// canonical string form. options restricts enum attributes when non-empty.
func CoerceAttributeValue(t models.AttributeType, options []string, raw string) (string, error) {
	ft, ok := attributeFieldTypes[t]
	if !ok {
		return "", fmt.Errorf("%w: attribute type %s holds no scalar value", common.ErrorValidation, t)
	}
	f := &models.NodeTypeField{Name: string(t), Type: ft, DefaultValues: options}
	v, err := coerce(f, raw)
	if err != nil {
		return "", fmt.Errorf("%w: %s attribute: %v", common.ErrorValidation, t, err)
	}

	switch c := v.(type) {
	case string:
		return c, nil
	case bool:
		return strconv.FormatBool(c), nil
	case int64:
		return strconv.FormatInt(c, 10), nil
	case float64:
		if t == models.AttributePercent && (c < 0 || c > 100) {
			return "", fmt.Errorf("%w: percent %v out of range", common.ErrorValidation, c)
		}
		return strconv.FormatFloat(c, 'f', -1, 64), nil
	case time.Time:
		if ft == models.FieldDate {
			return c.Format(dateLayout), nil
		}
		return c.Format(time.RFC3339), nil
	}
	return fmt.Sprint(v), nil
}
