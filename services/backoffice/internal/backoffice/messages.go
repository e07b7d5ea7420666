package backoffice

import (
	"errors"
	"net/http"

	"github.com/edumeal/backoffice/services/backoffice/internal/edumeal"
	"github.com/edumeal/backoffice/services/backoffice/internal/planning"
	"github.com/edumeal/backoffice/services/backoffice/internal/purchasing"
	"github.com/edumeal/backoffice/services/backoffice/internal/validation"
)

// User-facing messages.
const (
	msgGenericFailure     = "Đã có lỗi xảy ra, vui lòng thử lại."
	msgLoadFailed         = "Không thể tải dữ liệu, vui lòng thử lại."
	msgSubmitFailed       = "Tạo lịch thực đơn thất bại, vui lòng thử lại."
	msgDeriveFailed       = "Đã tạo lịch thực đơn nhưng chưa tạo được kế hoạch mua hàng."
	msgOffDaysFailed      = "Không thể tải danh sách ngày nghỉ, các ngày nghỉ có thể chưa chính xác."
	msgOffDay             = "Không thể thêm món vào ngày nghỉ."
	msgDuplicateDish      = "Món ăn đã có trong bữa này."
	msgInvalidCell        = "Ngày hoặc bữa ăn không hợp lệ."
	msgWeekNotMonday      = "Tuần phải bắt đầu từ thứ Hai."
	msgEmptySchedule      = "Vui lòng chọn ít nhất một món ăn cho thực đơn."
	msgSubmitInProgress   = "Thực đơn đang được gửi, vui lòng chờ."
	msgSupplierRequired   = "Vui lòng nhập tên nhà cung cấp."
	msgReasonRequired     = "Vui lòng nhập lý do từ chối."
	msgPlanNotDraft       = "Kế hoạch đã được xác nhận, không thể chỉnh sửa."
	msgLineNotFound       = "Không tìm thấy dòng nguyên liệu."
	msgNegativeAmount     = "Số lượng và đơn giá không được âm."
	msgNotFound           = "Không tìm thấy dữ liệu."
	msgSessionRequired    = "Vui lòng đăng nhập."
	msgSessionExpired     = "Phiên đăng nhập đã hết hạn, vui lòng đăng nhập lại."
	msgForbidden          = "Bạn không có quyền truy cập chức năng này."
	msgInvalidCredentials = "Email hoặc mật khẩu không đúng."
	msgNoRole             = "Tài khoản chưa được phân quyền."
	msgStorageUnavailable = "Không thể lưu lựa chọn, vui lòng thử lại."
	msgStudentNotLinked   = "Học sinh không thuộc tài khoản của bạn."
	msgInvalidPayload     = "Dữ liệu gửi lên không hợp lệ."
	msgValidationFailed   = "Dữ liệu không hợp lệ."
)

// classify maps an error to an HTTP status and the message shown to the
// user. The backend's own message wins over the generic fallback.
func classify(err error, fallback string) (int, string) {
	switch {
	case errors.Is(err, planning.ErrOffDay):
		return http.StatusConflict, msgOffDay
	case errors.Is(err, planning.ErrDuplicateDish):
		return http.StatusConflict, msgDuplicateDish
	case errors.Is(err, planning.ErrInvalidDay), errors.Is(err, planning.ErrInvalidMealType), errors.Is(err, planning.ErrInvalidDish):
		return http.StatusBadRequest, msgInvalidCell
	case errors.Is(err, planning.ErrWeekStartNotMonday):
		return http.StatusUnprocessableEntity, msgWeekNotMonday
	case errors.Is(err, planning.ErrEmptySchedule):
		return http.StatusUnprocessableEntity, msgEmptySchedule
	case errors.Is(err, ErrSubmitInProgress):
		return http.StatusConflict, msgSubmitInProgress
	case errors.Is(err, purchasing.ErrSupplierRequired):
		return http.StatusBadRequest, msgSupplierRequired
	case errors.Is(err, purchasing.ErrReasonRequired):
		return http.StatusBadRequest, msgReasonRequired
	case errors.Is(err, purchasing.ErrPlanNotDraft):
		return http.StatusConflict, msgPlanNotDraft
	case errors.Is(err, purchasing.ErrLineNotFound):
		return http.StatusNotFound, msgLineNotFound
	case errors.Is(err, purchasing.ErrNegativeAmount):
		return http.StatusBadRequest, msgNegativeAmount
	case validation.Fields(err) != nil:
		return http.StatusBadRequest, msgValidationFailed
	case errors.Is(err, edumeal.ErrUnauthorized):
		return http.StatusUnauthorized, msgSessionExpired
	case errors.Is(err, edumeal.ErrForbidden):
		return http.StatusForbidden, withServerMessage(err, msgForbidden)
	case errors.Is(err, edumeal.ErrNotFound):
		return http.StatusNotFound, withServerMessage(err, msgNotFound)
	}

	var apiErr *edumeal.APIError
	if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
		return apiErr.Status, withServerMessage(err, fallback)
	}
	return http.StatusBadGateway, withServerMessage(err, fallback)
}

func withServerMessage(err error, fallback string) string {
	if msg := edumeal.ServerMessage(err); msg != "" {
		return msg
	}
	return fallback
}
