package http

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/condicional-api/internal/application/condicional"
	"github.com/jhoicas/condicional-api/internal/application/dto"
	"github.com/jhoicas/condicional-api/internal/domain/repository"
)

// parseReportFilter traduce los query params de reportes/estadísticas al
// filtro de repositorio. Fechas en formato "2006-01-02".
func parseReportFilter(c *fiber.Ctx) (repository.CondicionalFilter, error) {
	var in dto.ReportFilterRequest
	if err := c.QueryParser(&in); err != nil {
		return repository.CondicionalFilter{}, fmt.Errorf("query inválido")
	}

	filter := repository.CondicionalFilter{ExpiredOnly: in.ExpiredOnly}
	if in.ClientID != "" {
		clientID, err := strconv.ParseInt(in.ClientID, 10, 64)
		if err != nil || clientID <= 0 {
			return filter, fmt.Errorf("client_id inválido")
		}
		filter.ClientID = &clientID
	}
	if in.DateFrom != "" {
		from, err := condicional.ParseDate(in.DateFrom)
		if err != nil {
			return filter, fmt.Errorf("date_from inválido, formato esperado 2006-01-02")
		}
		filter.DateFrom = &from
	}
	if in.DateTo != "" {
		to, err := condicional.ParseDate(in.DateTo)
		if err != nil {
			return filter, fmt.Errorf("date_to inválido, formato esperado 2006-01-02")
		}
		filter.DateTo = &to
	}
	return filter, nil
}
