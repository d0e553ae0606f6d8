package i18n

var catalog = map[string]map[string]string{
	Arabic: {
		"error.internal":            "حدث خطأ غير متوقع، يرجى المحاولة لاحقاً",
		"error.bad_request":         "طلب غير صالح",
		"error.invalid_json":        "صيغة JSON غير صالحة",
		"error.validation":          "البيانات المدخلة غير صالحة",
		"error.unauthorized":        "يجب تسجيل الدخول",
		"error.forbidden":           "ليس لديك صلاحية لتنفيذ هذا الإجراء",
		"error.blocked":             "تم إيقاف هذا الحساب",
		"error.not_found":           "العنصر المطلوب غير موجود",
		"error.conflict":            "تم تعديل السجل من قبل طلب آخر",
		"error.invalid_id":          "معرف غير صالح",
		"error.invalid_transition":  "لا يمكن تغيير حالة الطلب إلى الحالة المطلوبة",
		"error.invalid_credentials": "البريد الإلكتروني أو كلمة المرور غير صحيحة",
		"error.duplicate_email":     "البريد الإلكتروني مستخدم بالفعل",
		"error.duplicate":           "السجل موجود بالفعل",
		"error.own_service":         "لا يمكنك طلب خدمتك الخاصة",
		"error.service_inactive":    "الخدمة غير متاحة للطلب حالياً",
		"error.service_has_orders":  "لا يمكن حذف خدمة لديها طلبات قيد التنفيذ",
		"error.already_reviewed":    "تم تقييم هذا الطلب مسبقاً",
		"error.order_not_completed": "لا يمكن تقييم طلب غير مكتمل",
		"error.order_not_terminal":  "يمكن حذف الطلبات المكتملة أو الملغاة فقط",
		"error.category_in_use":     "لا يمكن حذف تصنيف يحتوي على خدمات أو تصنيفات فرعية",
		"error.dispute_resolved":    "تمت تسوية هذا النزاع مسبقاً",
		"error.invalid_amount":      "المبلغ غير صالح",
		"error.invalid_action":      "إجراء غير معروف",
		"error.invalid_signature":   "توقيع غير صالح",
		"error.payment_failed":      "تعذر إنشاء عملية الدفع",
		"error.no_payout_account":   "لا يوجد حساب لاستلام الأرباح",
		"error.reason_required":     "يجب ذكر السبب لهذا الإجراء",
		"error.below_minimum":       "الرصيد أقل من الحد الأدنى للتحويل",
		"error.nothing_to_pay":      "لا توجد أرباح مستحقة",
		"error.too_many_images":     "تم الوصول إلى الحد الأقصى لصور الخدمة",
		"error.invalid_file":        "الملف فارغ أو بصيغة غير مدعومة",
		"error.invalid_date_range":  "نطاق التاريخ غير صالح",

		"field.required":      "هذا الحقل مطلوب",
		"field.min_len":       "يجب ألا يقل الطول عن %s حرفاً",
		"field.max_len":       "يجب ألا يزيد الطول عن %s حرفاً",
		"field.min_items":     "يجب إضافة %s عنصر على الأقل",
		"field.max_items":     "لا يمكن إضافة أكثر من %s عناصر",
		"field.min":           "يجب أن تكون القيمة %s على الأقل",
		"field.max":           "يجب ألا تتجاوز القيمة %s",
		"field.gt":            "يجب أن تكون القيمة أكبر من %s",
		"field.email":         "بريد إلكتروني غير صالح",
		"field.phone":         "رقم هاتف غير صالح",
		"field.oneof":         "القيمة يجب أن تكون إحدى: %s",
		"field.unique":        "القيم يجب أن تكون غير مكررة",
		"field.slug":          "يسمح فقط بالأحرف اللاتينية الصغيرة والأرقام والشرطات",
		"field.invalid":       "قيمة غير صالحة",
		"field.reason_length": "يجب أن يتكون السبب من %d حرفاً على الأقل",
		"field.refund_range":  "يجب أن يكون مبلغ الاسترداد أكبر من صفر وأقل من قيمة الطلب",

		"mail.order_placed.subject":      "طلب جديد #%d",
		"mail.order_placed.body":         "لديك طلب جديد على خدمة «%s» بقيمة %s.",
		"mail.order_delivered.subject":   "تم تسليم طلبك #%d",
		"mail.order_delivered.body":      "قام البائع بتسليم طلبك على خدمة «%s». يرجى مراجعة التسليم وقبوله.",
		"mail.order_completed.subject":   "اكتمل الطلب #%d",
		"mail.order_completed.body":      "تم إكمال الطلب على خدمة «%s» بنجاح.",
		"mail.order_cancelled.subject":   "تم إلغاء الطلب #%d",
		"mail.order_cancelled.body":      "تم إلغاء الطلب على خدمة «%s».",
		"mail.order_disputed.subject":    "تم فتح نزاع على الطلب #%d",
		"mail.order_disputed.body":       "تم فتح نزاع على الطلب على خدمة «%s» وسيقوم فريق الدعم بمراجعته.",
		"mail.order_in_progress.subject": "بدأ العمل على الطلب #%d",
		"mail.order_in_progress.body":    "تم تأكيد الدفع وبدأ العمل على خدمة «%s».",
		"mail.dispute_resolved.subject":  "تمت تسوية النزاع على الطلب #%d",
		"mail.dispute_resolved.body":     "قرر فريق الدعم: %s.",
		"mail.payout_sent.subject":       "تم تحويل أرباحك",
		"mail.payout_sent.body":          "تم تحويل مبلغ %s إلى حسابك.",

		"resolution.refund_buyer":   "استرداد كامل المبلغ للمشتري",
		"resolution.release_seller": "تحويل المبلغ للبائع",
		"resolution.partial_refund": "استرداد جزئي للمشتري",
	},
	English: {
		"error.internal":            "Something went wrong, please try again later",
		"error.bad_request":         "Bad request",
		"error.invalid_json":        "Invalid JSON body",
		"error.validation":          "Validation failed",
		"error.unauthorized":        "Authentication required",
		"error.forbidden":           "You are not allowed to perform this action",
		"error.blocked":             "This account has been suspended",
		"error.not_found":           "Resource not found",
		"error.conflict":            "The record was modified by another request",
		"error.invalid_id":          "Invalid id",
		"error.invalid_transition":  "The order cannot move to the requested status",
		"error.invalid_credentials": "Invalid email or password",
		"error.duplicate_email":     "Email is already registered",
		"error.duplicate":           "Record already exists",
		"error.own_service":         "You cannot order your own service",
		"error.service_inactive":    "This service is not available for ordering",
		"error.service_has_orders":  "A service with open orders cannot be deleted",
		"error.already_reviewed":    "This order has already been reviewed",
		"error.order_not_completed": "Only completed orders can be reviewed",
		"error.order_not_terminal":  "Only completed or cancelled orders can be deleted",
		"error.category_in_use":     "Category still has services or subcategories",
		"error.dispute_resolved":    "This dispute is already resolved",
		"error.invalid_amount":      "Invalid amount",
		"error.invalid_action":      "Unknown action",
		"error.invalid_signature":   "Invalid signature",
		"error.payment_failed":      "Could not start the payment",
		"error.no_payout_account":   "No payout account configured",
		"error.reason_required":     "A reason is required for this action",
		"error.below_minimum":       "Balance is below the payout minimum",
		"error.nothing_to_pay":      "No earnings are due",
		"error.too_many_images":     "The service already has the maximum number of images",
		"error.invalid_file":        "The file is empty or has an unsupported type",
		"error.invalid_date_range":  "Invalid date range",

		"field.required":      "This field is required",
		"field.min_len":       "Must be at least %s characters long",
		"field.max_len":       "Must be at most %s characters long",
		"field.min_items":     "Add at least %s item(s)",
		"field.max_items":     "No more than %s items allowed",
		"field.min":           "Must be at least %s",
		"field.max":           "Must be at most %s",
		"field.gt":            "Must be greater than %s",
		"field.email":         "Invalid email address",
		"field.phone":         "Invalid phone number",
		"field.oneof":         "Must be one of: %s",
		"field.unique":        "Values must be unique",
		"field.slug":          "Only lowercase latin letters, digits and dashes are allowed",
		"field.invalid":       "Invalid value",
		"field.reason_length": "Reason must be at least %d characters long",
		"field.refund_range":  "Refund must be greater than zero and less than the order total",

		"mail.order_placed.subject":      "New order #%d",
		"mail.order_placed.body":         "You have a new order for \"%s\" worth %s.",
		"mail.order_delivered.subject":   "Your order #%d was delivered",
		"mail.order_delivered.body":      "The seller delivered your order for \"%s\". Please review and accept the delivery.",
		"mail.order_completed.subject":   "Order #%d completed",
		"mail.order_completed.body":      "The order for \"%s\" has been completed.",
		"mail.order_cancelled.subject":   "Order #%d cancelled",
		"mail.order_cancelled.body":      "The order for \"%s\" has been cancelled.",
		"mail.order_disputed.subject":    "Dispute opened on order #%d",
		"mail.order_disputed.body":       "A dispute was opened on the order for \"%s\". Our support team will review it.",
		"mail.order_in_progress.subject": "Work started on order #%d",
		"mail.order_in_progress.body":    "Payment confirmed, work on \"%s\" has started.",
		"mail.dispute_resolved.subject":  "Dispute on order #%d resolved",
		"mail.dispute_resolved.body":     "Support decision: %s.",
		"mail.payout_sent.subject":       "Your earnings were sent",
		"mail.payout_sent.body":          "%s has been transferred to your account.",

		"resolution.refund_buyer":   "full refund to the buyer",
		"resolution.release_seller": "payment released to the seller",
		"resolution.partial_refund": "partial refund to the buyer",
	},
}
