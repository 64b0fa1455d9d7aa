package rubric_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/okian/callqa/internal/domain/rubric"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCanonicalRubric(t *testing.T) {
	Convey("Given the canonical rubric", t, func() {
		rb := rubric.Canonical()

		Convey("Then it has the ten parameters in order", func() {
			So(rb.Len(), ShouldEqual, 10)
			So(rb.Keys(), ShouldResemble, []string{
				"greeting",
				"collectionUrgency",
				"rebuttalCustomerHandling",
				"callEtiquette",
				"callDisclaimer",
				"correctDisposition",
				"callClosing",
				"fatalIdentification",
				"fatalTapeDiscloser",
				"fatalToneLanguage",
			})
		})

		Convey("Then the maximum score is 100", func() {
			So(rb.MaxScore(), ShouldEqual, 100)
		})

		Convey("Then weights, names and modes match the table", func() {
			expect := map[string]struct {
				name   string
				weight int
				mode   rubric.Mode
			}{
				"greeting":                 {"Greeting", 5, rubric.PassFail},
				"collectionUrgency":        {"Collection Urgency", 15, rubric.Scaled},
				"rebuttalCustomerHandling": {"Rebuttal Handling", 15, rubric.Scaled},
				"callEtiquette":            {"Call Etiquette", 15, rubric.Scaled},
				"callDisclaimer":           {"Call Disclaimer", 5, rubric.PassFail},
				"correctDisposition":       {"Correct Disposition", 10, rubric.PassFail},
				"callClosing":              {"Call Closing", 5, rubric.PassFail},
				"fatalIdentification":      {"Identification", 5, rubric.PassFail},
				"fatalTapeDiscloser":       {"Tape Disclosure", 10, rubric.PassFail},
				"fatalToneLanguage":        {"Tone & Language", 15, rubric.PassFail},
			}
			for _, p := range rb.Parameters() {
				want := expect[p.Key]
				So(p.Name, ShouldEqual, want.name)
				So(p.Weight, ShouldEqual, want.weight)
				So(p.Mode, ShouldEqual, want.mode)
				So(p.Description, ShouldNotBeBlank)
			}
		})

		Convey("When a caller mutates the returned parameters", func() {
			params := rb.Parameters()
			params[0].Weight = 99
			params[0].Key = "hijacked"

			Convey("Then the shared rubric is unchanged", func() {
				p, ok := rb.Lookup("greeting")
				So(ok, ShouldBeTrue)
				So(p.Weight, ShouldEqual, 5)
				So(rb.MaxScore(), ShouldEqual, 100)
				_, ok = rb.Lookup("hijacked")
				So(ok, ShouldBeFalse)
			})
		})

		Convey("Then Canonical always returns the same table", func() {
			So(rubric.Canonical(), ShouldEqual, rb)
		})
	})
}

func TestParameterAllows(t *testing.T) {
	Convey("Given a PASS_FAIL parameter of weight 10", t, func() {
		p := rubric.Parameter{Key: "k", Weight: 10, Mode: rubric.PassFail}

		Convey("Then only 0 and the full weight are legal", func() {
			So(p.Allows(0), ShouldBeTrue)
			So(p.Allows(10), ShouldBeTrue)
			for s := 1; s < 10; s++ {
				So(p.Allows(s), ShouldBeFalse)
			}
			So(p.Allows(-1), ShouldBeFalse)
			So(p.Allows(11), ShouldBeFalse)
		})
	})

	Convey("Given a SCALED parameter of weight 15", t, func() {
		p := rubric.Parameter{Key: "k", Weight: 15, Mode: rubric.Scaled}

		Convey("Then every integer in range is legal", func() {
			for s := 0; s <= 15; s++ {
				So(p.Allows(s), ShouldBeTrue)
			}
			So(p.Allows(-1), ShouldBeFalse)
			So(p.Allows(16), ShouldBeFalse)
		})
	})
}

func TestNewRubricValidation(t *testing.T) {
	Convey("Given parameter tables", t, func() {
		Convey("When the table is empty", func() {
			_, err := rubric.New(nil)
			So(errors.Is(err, rubric.ErrInvalidRubric), ShouldBeTrue)
		})

		Convey("When keys are duplicated", func() {
			_, err := rubric.New([]rubric.Parameter{
				{Key: "a", Weight: 1, Mode: rubric.Scaled},
				{Key: "a", Weight: 2, Mode: rubric.Scaled},
			})
			So(errors.Is(err, rubric.ErrInvalidRubric), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "duplicate key a")
		})

		Convey("When a weight is not positive", func() {
			_, err := rubric.New([]rubric.Parameter{{Key: "a", Weight: 0, Mode: rubric.Scaled}})
			So(errors.Is(err, rubric.ErrInvalidRubric), ShouldBeTrue)
		})

		Convey("When a mode is unknown", func() {
			_, err := rubric.New([]rubric.Parameter{{Key: "a", Weight: 3}})
			So(errors.Is(err, rubric.ErrInvalidRubric), ShouldBeTrue)
		})

		Convey("When the table is valid", func() {
			rb, err := rubric.New([]rubric.Parameter{
				{Key: "a", Weight: 3, Mode: rubric.Scaled},
				{Key: "b", Weight: 7, Mode: rubric.PassFail},
			})
			So(err, ShouldBeNil)
			So(rb.MaxScore(), ShouldEqual, 10)
		})
	})
}

func TestModeJSON(t *testing.T) {
	Convey("Given a parameter encoded as JSON", t, func() {
		p, _ := rubric.Canonical().Lookup("callEtiquette")
		data, err := json.Marshal(p)
		So(err, ShouldBeNil)

		Convey("Then the mode is encoded by name", func() {
			So(string(data), ShouldContainSubstring, `"scoringMode":"SCALED"`)
			So(string(data), ShouldContainSubstring, `"key":"callEtiquette"`)
		})

		Convey("Then decoding restores the parameter", func() {
			var back rubric.Parameter
			So(json.Unmarshal(data, &back), ShouldBeNil)
			So(back, ShouldResemble, p)
		})
	})

	Convey("Given an unknown mode name", t, func() {
		var m rubric.Mode
		err := json.Unmarshal([]byte(`"GRADED"`), &m)
		So(errors.Is(err, rubric.ErrInvalidRubric), ShouldBeTrue)
	})
}
