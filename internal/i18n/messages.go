package i18n

var messages = map[string]map[string]string{
	LocaleZhCN: {
		"common.success":                  "成功",
		"error.bad_request":               "请求参数错误",
		"error.unauthorized":              "未登录或登录已过期",
		"error.forbidden":                 "无权执行该操作",
		"error.not_found":                 "资源不存在",
		"error.too_many_requests":         "请求过于频繁，请稍后再试",
		"error.internal":                  "服务器内部错误",
		"error.user_id_invalid":           "用户 ID 无效",
		"error.admin_id_invalid":          "管理员 ID 无效",
		"error.context_type_invalid":      "上下文类型错误",
		"error.invalid_quantity":          "数量必须大于 0",
		"error.out_of_stock":              "库存不足",
		"error.stock_conflict":            "部分商品库存已变化，请调整购物车后重试",
		"error.no_shipping_address":       "请先添加收货地址",
		"error.invalid_transition":        "当前状态不允许该操作",
		"error.noop_transition":           "订单已处于该状态",
		"error.payment_verification":      "支付校验失败",
		"error.concurrency_conflict":      "操作冲突，请重试",
		"error.checkout_in_progress":      "订单正在提交中，请勿重复提交",
		"error.cart_empty":                "购物车为空",
		"error.product_not_available":     "商品已下架或不可购买",
		"error.variant_required":          "请选择商品规格",
		"error.variant_invalid":           "商品规格无效",
		"error.order_not_found":           "订单不存在",
		"error.product_not_found":         "商品不存在",
		"error.variant_not_found":         "规格不存在",
		"error.cart_item_not_found":       "购物车商品不存在",
		"error.address_not_found":         "收货地址不存在",
		"error.discount_not_found":        "折扣不存在",
		"error.user_not_found":            "用户不存在",
		"error.admin_not_found":           "管理员不存在",
		"error.payment_method_invalid":    "不支持的支付方式",
		"error.payment_reference_needed":  "预付订单需要支付流水号",
		"error.order_status_invalid":      "未知的订单状态",
		"error.note_required":             "备注不能为空",
		"error.address_invalid":           "收货地址信息不完整",
		"error.product_invalid":           "商品信息不完整",
		"error.variant_invalid_input":     "规格信息不完整",
		"error.slug_exists":               "slug 已被使用",
		"error.sku_exists":                "规格编码已存在",
		"error.discount_invalid":          "折扣规则无效",
		"error.pricing_setting_invalid":   "计价设置无效",
		"error.invalid_credentials":       "账号或密码错误",
		"error.password_old_invalid":      "原密码错误",
		"error.user_disabled":             "账号已被禁用",
		"error.email_exists":              "该邮箱已注册",
		"error.email_invalid":             "邮箱格式无效",
		"error.password_weak":             "密码强度不足",
		"error.password_min_length":       "密码长度至少为 %d 位",
		"error.password_require_upper":    "密码需包含大写字母",
		"error.password_require_lower":    "密码需包含小写字母",
		"error.password_require_number":   "密码需包含数字",
		"error.user_status_invalid":       "用户状态无效",
		"error.webhook_signature_invalid": "回调签名无效",
		"error.webhook_payload_invalid":   "回调数据无效",
		"error.webhook_not_configured":    "未配置支付回调密钥",
		"error.jwt_secret_missing":        "服务端未配置登录密钥",
		"error.auth_header_missing":       "缺少 Authorization 头",
		"error.auth_header_invalid":       "Authorization 头格式错误",
		"error.token_invalid":             "登录凭证无效",
		"error.token_revoked":             "登录凭证已失效，请重新登录",
		"error.rate_limited":              "请求过于频繁，请 %d 秒后再试",
		"error.rate_limit_unavailable":    "限流服务暂不可用",
		"error.role_invalid":              "角色无效",
	},
	LocaleEnUS: {
		"common.success":                  "Success",
		"error.bad_request":               "Invalid request parameters",
		"error.unauthorized":              "Please sign in again",
		"error.forbidden":                 "You are not allowed to perform this action",
		"error.not_found":                 "Resource not found",
		"error.too_many_requests":         "Too many requests, please try again later",
		"error.internal":                  "Internal server error",
		"error.user_id_invalid":           "Invalid user id",
		"error.admin_id_invalid":          "Invalid admin id",
		"error.context_type_invalid":      "Invalid context value",
		"error.invalid_quantity":          "Quantity must be greater than zero",
		"error.out_of_stock":              "Not enough stock",
		"error.stock_conflict":            "Stock changed for some items, please review your cart",
		"error.no_shipping_address":       "Please add a shipping address first",
		"error.invalid_transition":        "This action is not allowed in the current status",
		"error.noop_transition":           "The order is already in that status",
		"error.payment_verification":      "Payment could not be verified",
		"error.concurrency_conflict":      "Conflicting update, please retry",
		"error.checkout_in_progress":      "Your order is already being placed",
		"error.cart_empty":                "Your cart is empty",
		"error.product_not_available":     "This product is not available",
		"error.variant_required":          "Please choose a variant",
		"error.variant_invalid":           "Invalid product variant",
		"error.order_not_found":           "Order not found",
		"error.product_not_found":         "Product not found",
		"error.variant_not_found":         "Variant not found",
		"error.cart_item_not_found":       "Cart item not found",
		"error.address_not_found":         "Address not found",
		"error.discount_not_found":        "Discount not found",
		"error.user_not_found":            "User not found",
		"error.admin_not_found":           "Admin not found",
		"error.payment_method_invalid":    "Unsupported payment method",
		"error.payment_reference_needed":  "A payment reference is required for prepaid orders",
		"error.order_status_invalid":      "Unknown order status",
		"error.note_required":             "Note must not be empty",
		"error.address_invalid":           "Shipping address is incomplete",
		"error.product_invalid":           "Product details are incomplete",
		"error.variant_invalid_input":     "Variant details are incomplete",
		"error.slug_exists":               "Slug is already in use",
		"error.sku_exists":                "SKU already exists",
		"error.discount_invalid":          "Invalid discount rule",
		"error.pricing_setting_invalid":   "Invalid pricing settings",
		"error.invalid_credentials":       "Invalid account or password",
		"error.password_old_invalid":      "Current password is incorrect",
		"error.user_disabled":             "This account has been disabled",
		"error.email_exists":              "Email is already registered",
		"error.email_invalid":             "Invalid email address",
		"error.password_weak":             "Password is too weak",
		"error.password_min_length":       "Password must be at least %d characters",
		"error.password_require_upper":    "Password must contain an uppercase letter",
		"error.password_require_lower":    "Password must contain a lowercase letter",
		"error.password_require_number":   "Password must contain a digit",
		"error.user_status_invalid":       "Invalid user status",
		"error.webhook_signature_invalid": "Invalid webhook signature",
		"error.webhook_payload_invalid":   "Invalid webhook payload",
		"error.webhook_not_configured":    "Payment webhook secret is not configured",
		"error.jwt_secret_missing":        "Signing secret is not configured",
		"error.auth_header_missing":       "Missing Authorization header",
		"error.auth_header_invalid":       "Malformed Authorization header",
		"error.token_invalid":             "Invalid token",
		"error.token_revoked":             "Token has been revoked, please sign in again",
		"error.rate_limited":              "Too many requests, retry in %d seconds",
		"error.rate_limit_unavailable":    "Rate limiter is unavailable",
		"error.role_invalid":              "Invalid role",
	},
}
