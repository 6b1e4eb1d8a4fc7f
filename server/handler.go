package server

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/esimov/jfda"
	"github.com/gofiber/fiber/v2"
)

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"stages": s.detector.Stages(),
	})
}

// detect runs the detector over the uploaded "image" file. The min_size, factor
// and th form values override the default parameters.
func (s *Server) detect(c *fiber.Ctx) error {
	params, err := s.requestParams(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("image")
	if err != nil {
		return errMissingImage
	}
	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("unable to open the uploaded file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("unable to read the uploaded file: %w", err)
	}

	ctx := c.UserContext()
	key := cacheKey(data, params, s.detector.Stages())
	if s.cache != nil {
		body, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.log.WithError(err).WithField("request_id", getRequestID(c)).Warn("cache lookup failed")
		} else if ok {
			c.Set("X-Cache", "HIT")
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Send(body)
		}
	}

	img, err := jfda.Decode(bytes.NewReader(data))
	if err != nil {
		return err
	}
	boxes, timing, err := s.detector.DetectTimed(img, params)
	if err != nil {
		return err
	}

	b := img.Bounds()
	body, err := json.Marshal(jfda.NewResult(b.Dx(), b.Dy(), s.detector.Stages(), boxes, timing.Total))
	if err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, body); err != nil {
			s.log.WithError(err).WithField("request_id", getRequestID(c)).Warn("cache store failed")
		}
		c.Set("X-Cache", "MISS")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}

func (s *Server) requestParams(c *fiber.Ctx) (jfda.Params, error) {
	p := s.params

	parse := func(name string, dst *float64) error {
		v := c.FormValue(name)
		if v == "" {
			return nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: invalid %s %q", jfda.ErrConfig, name, v)
		}
		*dst = f
		return nil
	}
	if err := parse("min_size", &p.MinFaceSize); err != nil {
		return p, err
	}
	if err := parse("factor", &p.Factor); err != nil {
		return p, err
	}

	th, err := jfda.ParseThresholds(c.FormValue("th"), p.Thresholds)
	if err != nil {
		return p, err
	}
	p.Thresholds = th

	return p, p.Validate()
}
