package server

import (
	"net/http"
	"strconv"

	"github.com/canfieldjuan/graphgate/internal/gateway"
	"github.com/gin-gonic/gin"
)

const defaultNumResults = 10

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, s.svc.Health())
}

func (s *Server) handleAddEpisode(c *gin.Context) {
	var body gateway.EpisodeRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	resp, err := s.svc.AddEpisode(c.Request.Context(), body.Request())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleSearch(c *gin.Context) {
	query, ok := c.GetQuery("query")
	if !ok {
		missingQueryParam(c, "query")
		return
	}
	groupIDs, ok := c.GetQuery("group_ids")
	if !ok {
		missingQueryParam(c, "group_ids")
		return
	}

	limit := defaultNumResults
	if raw, ok := c.GetQuery("num_results"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "num_results must be an integer"})
			return
		}
		limit = n
	}

	res, err := s.svc.Search(c.Request.Context(), query, gateway.ParseGroupIDs(groupIDs), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleDeleteEpisode(c *gin.Context) {
	resp, err := s.svc.DeleteEpisode(c.Request.Context(), c.Param("episode_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleEntityEdges(c *gin.Context) {
	groupIDs, ok := c.GetQuery("group_ids")
	if !ok {
		missingQueryParam(c, "group_ids")
		return
	}

	res, err := s.svc.GetEntityEdges(c.Request.Context(), c.Param("entity_name"), gateway.ParseGroupIDs(groupIDs))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func writeError(c *gin.Context, err error) {
	c.JSON(gateway.StatusCode(err), gin.H{"detail": err.Error()})
}

func missingQueryParam(c *gin.Context, name string) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "missing query parameter: " + name})
}
