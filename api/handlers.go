package api

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/novostroy/pkg/catalog"
	"github.com/papercomputeco/novostroy/pkg/llm"
	"github.com/papercomputeco/novostroy/pkg/storage"
)

// maxResolveIDs bounds one resolve request.
const maxResolveIDs = 100

// ComplexesResponse is the list envelope for complexes.
type ComplexesResponse struct {
	Complexes []catalog.Complex `json:"complexes"`
}

// ComplexDetail is a complex with its apartments and reviews.
type ComplexDetail struct {
	catalog.Complex
	Apartments []catalog.Apartment `json:"apartments"`
	Reviews    []catalog.Review    `json:"reviews"`
}

// ResolveRequest lists complex ids to resolve, typically the identifiers
// extracted from an assistant answer.
type ResolveRequest struct {
	IDs []string `json:"ids"`
}

// SearchesResponse is the list envelope for search records.
type SearchesResponse struct {
	Count    int                    `json:"count"`
	Searches []storage.SearchRecord `json:"searches"`
}

func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleListComplexes returns complexes, highest rating first, optionally
// narrowed to one city.
func (s *Server) handleListComplexes(c *fiber.Ctx) error {
	complexes, err := s.driver.ListComplexes(c.UserContext(), storage.ComplexFilter{
		CityID: c.Query("city_id"),
	})
	if err != nil {
		s.logger.Error("failed to list complexes", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to list complexes"})
	}

	return c.JSON(ComplexesResponse{Complexes: complexes})
}

// handleGetComplex returns one complex with its apartments and reviews.
func (s *Server) handleGetComplex(c *fiber.Ctx) error {
	id := c.Params("id")
	ctx := c.UserContext()

	complex, err := s.driver.GetComplex(ctx, id)
	if err != nil {
		var nf storage.NotFoundError
		if errors.As(err, &nf) {
			return c.Status(fiber.StatusNotFound).JSON(llm.ErrorResponse{Error: "complex not found"})
		}
		s.logger.Error("failed to get complex", "id", id, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to get complex"})
	}

	apartments, err := s.driver.ListApartments(ctx, id)
	if err != nil {
		s.logger.Error("failed to list apartments", "id", id, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to list apartments"})
	}

	reviews, err := s.driver.ListReviews(ctx, id)
	if err != nil {
		s.logger.Error("failed to list reviews", "id", id, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to list reviews"})
	}

	return c.JSON(ComplexDetail{
		Complex:    *complex,
		Apartments: apartments,
		Reviews:    reviews,
	})
}

// handleResolveComplexes returns the complexes for the requested ids in
// request order, skipping unknown ids.
func (s *Server) handleResolveComplexes(c *fiber.Ctx) error {
	var req ResolveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}
	if len(req.IDs) > maxResolveIDs {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "too many ids"})
	}

	complexes, err := s.driver.GetComplexes(c.UserContext(), req.IDs)
	if err != nil {
		s.logger.Error("failed to resolve complexes", "ids", req.IDs, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to resolve complexes"})
	}

	return c.JSON(ComplexesResponse{Complexes: complexes})
}

// handleListSearches returns recent search records, newest first.
func (s *Server) handleListSearches(c *fiber.Ctx) error {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "limit must be a non-negative integer"})
		}
		limit = n
	}

	searches, err := s.driver.ListSearches(c.UserContext(), limit)
	if err != nil {
		s.logger.Error("failed to list searches", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to list searches"})
	}

	return c.JSON(SearchesResponse{
		Count:    len(searches),
		Searches: searches,
	})
}
