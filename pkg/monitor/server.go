package monitor

import (
	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"
	"net/http"
	"rtuslave/pkg/apis/response"
	"rtuslave/pkg/protocol/modbusrtu"
	modbusrturuntime "rtuslave/pkg/protocol/modbusrtu/runtime"
	"strconv"
)

// Source is what the status endpoints read. *modbusrtu.Slave implements it.
type Source interface {
	DeviceID() byte
	Table() *modbusrtu.RegisterTable
	Stats() modbusrturuntime.StatsSnapshot
}

type RegistersResponse struct {
	DeviceID  byte     `json:"deviceId"`
	Registers []uint16 `json:"registers"`
}

type RegisterResponse struct {
	Address uint16 `json:"address"`
	Value   uint16 `json:"value"`
}

func InstallHandler(group *gin.RouterGroup, source Source) {
	group.GET("/registers", listRegisters(source))
	group.GET("/registers/:address", getRegister(source))
	group.GET("/stats", getStats(source))
}

func listRegisters(source Source) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, &RegistersResponse{
			DeviceID:  source.DeviceID(),
			Registers: source.Table().Values(),
		})
	}
}

func getRegister(source Source) gin.HandlerFunc {
	return func(c *gin.Context) {
		param := c.Param("address")
		// base 0 accepts 0x prefixed addresses
		address, err := strconv.ParseUint(param, 0, 16)
		if err != nil {
			klog.V(2).InfoS("Failed to parse register address", "address", param, "err", err)
			c.JSON(http.StatusBadRequest, response.NewMultiError(response.ErrInvalidParameter("address", err)))
			return
		}
		value, err := source.Table().Value(uint16(address))
		if err != nil {
			c.JSON(http.StatusNotFound, response.NewMultiError(response.ErrResourceNotFound("register "+param)))
			return
		}
		c.JSON(http.StatusOK, &RegisterResponse{Address: uint16(address), Value: value})
	}
}

func getStats(source Source) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, source.Stats())
	}
}
