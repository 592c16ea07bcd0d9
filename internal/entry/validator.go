package entry

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/ncheta/ncheta/internal/apperror"
)

type entryValidator struct {
	validate   *validator.Validate
	translator ut.Translator
}

var loadValidator = sync.OnceValues(newValidator)

func newValidator() (*entryValidator, error) {
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, fmt.Errorf("failed to register default translations: %w", err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := validate.RegisterValidation("notblank", isNotBlank); err != nil {
		return nil, fmt.Errorf("failed to register notblank validation: %w", err)
	}
	if err := validate.RegisterTranslation("notblank", trans, func(ut ut.Translator) error {
		return ut.Add("notblank", "{0} cannot be blank", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("notblank", fe.Field())
		return t
	}); err != nil {
		return nil, fmt.Errorf("failed to register notblank translation: %w", err)
	}

	return &entryValidator{validate: validate, translator: trans}, nil
}

func isNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func (v *entryValidator) check(field string, value any) error {
	err := v.validate.Struct(value)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("validate.Struct() > %w", err)
	}
	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		msgs = append(msgs, e.Translate(v.translator))
	}
	return apperror.NewValidation(field, "%s", strings.Join(msgs, ", "))
}

// ValidateFlashcards checks that items is a non-empty list of complete cards.
func ValidateFlashcards(items []Flashcard) error {
	v, err := loadValidator()
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return apperror.NewValidation("flashcards", "flashcards must not be empty")
	}
	for i, item := range items {
		if err := v.check(fmt.Sprintf("flashcards[%d]", i), item); err != nil {
			return fmt.Errorf("flashcards[%d] > %w", i, err)
		}
	}
	return nil
}

// ValidateQuestions checks that items is a non-empty list of questions with
// exactly four options and a correct index in [0, 3].
func ValidateQuestions(items []MultipleChoiceQuestion) error {
	v, err := loadValidator()
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return apperror.NewValidation("questions", "questions must not be empty")
	}
	for i, item := range items {
		if err := v.check(fmt.Sprintf("questions[%d]", i), item); err != nil {
			return fmt.Errorf("questions[%d] > %w", i, err)
		}
	}
	return nil
}

// ValidateContent checks c according to its variant.
func ValidateContent(c Content) error {
	switch c := c.(type) {
	case Summary:
		if strings.TrimSpace(c.Text) == "" {
			return apperror.NewValidation("text", "summary text cannot be blank")
		}
		return nil
	case FlashcardSet:
		return ValidateFlashcards(c.Items)
	case McqSet:
		return ValidateQuestions(c.Items)
	case nil:
		return apperror.NewValidation("content", "content is missing")
	}
	return apperror.NewValidation("content", "unsupported content type %T", c)
}
