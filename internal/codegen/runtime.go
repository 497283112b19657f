package codegen

// runtimeCatalog is the set of external runtime symbols the generated
// IR may call into — the C runtime the AOT output links against
// (allocation, string handling, formatted printing, atomics,
// collections). Only the entries a given module's body actually
// references end up declared, per the Writer's dead-stripping
// (spec.md §4.6 "only needed declarations are written to the
// preamble").
//
// Grounded on the builtin dispatch tables of
// _examples/original_source/packages/compiler/src/codegen/builtins/{io,mem,atomic,sync}.cpp
// and _examples/original_source/compiler/src/codegen/builtins/{assert,atomic,io}.cpp.
var runtimeCatalogOrder = []string{
	"tml_alloc",
	"tml_realloc",
	"tml_free",
	"tml_panic",
	"tml_assert_fail",
	"tml_str_new",
	"tml_str_concat",
	"tml_str_len",
	"tml_str_eq",
	"tml_print",
	"tml_print_i32",
	"tml_print_i64",
	"tml_print_f64",
	"tml_print_bool",
	"tml_println",
	"tml_i32_to_str",
	"tml_i64_to_str",
	"tml_f64_to_str",
	"tml_bool_to_str",
	"tml_vec_new",
	"tml_vec_push",
	"tml_vec_get",
	"tml_vec_len",
	"tml_map_new",
	"tml_map_insert",
	"tml_map_get",
	"tml_cover_func",
	"tml_cover_line",
	"tml_cover_branch",
	"llvm.stacksave",
	"llvm.stackrestore",
	"llvm.memmove.p0.p0.i64",
	"llvm.memset.p0.i64",
	"tml_spin_lock",
	"tml_spin_unlock",
	"tml_spin_trylock",
	"tml_thread_spawn",
	"tml_thread_join",
	"tml_thread_yield",
	"tml_thread_sleep",
	"tml_thread_id",
	"tml_channel_create",
	"tml_channel_send",
	"tml_channel_recv",
	"tml_channel_try_send",
	"tml_channel_try_recv",
	"tml_channel_close",
	"tml_channel_destroy",
	"tml_channel_len",
	"tml_mutex_create",
	"tml_mutex_lock",
	"tml_mutex_unlock",
	"tml_mutex_try_lock",
	"tml_mutex_destroy",
	"tml_waitgroup_create",
	"tml_waitgroup_add",
	"tml_waitgroup_done",
	"tml_waitgroup_wait",
	"tml_waitgroup_destroy",
}

var runtimeCatalog = map[string]string{
	"tml_alloc":          "declare ptr @tml_alloc(i64)",
	"tml_realloc":        "declare ptr @tml_realloc(ptr, i64)",
	"tml_free":           "declare void @tml_free(ptr)",
	"tml_panic":          "declare void @tml_panic(ptr) noreturn",
	"tml_assert_fail":    "declare void @tml_assert_fail(ptr, i32) noreturn",
	"tml_str_new":        "declare ptr @tml_str_new(ptr, i64)",
	"tml_str_concat":     "declare ptr @tml_str_concat(ptr, ptr)",
	"tml_str_len":        "declare i64 @tml_str_len(ptr)",
	"tml_str_eq":         "declare i1 @tml_str_eq(ptr, ptr)",
	"tml_print":          "declare void @tml_print(ptr)",
	"tml_print_i32":      "declare void @tml_print_i32(i32)",
	"tml_print_i64":      "declare void @tml_print_i64(i64)",
	"tml_print_f64":      "declare void @tml_print_f64(double)",
	"tml_print_bool":     "declare void @tml_print_bool(i1)",
	"tml_println":        "declare void @tml_println()",
	"tml_i32_to_str":     "declare ptr @tml_i32_to_str(i32)",
	"tml_i64_to_str":     "declare ptr @tml_i64_to_str(i64)",
	"tml_f64_to_str":     "declare ptr @tml_f64_to_str(double)",
	"tml_bool_to_str":    "declare ptr @tml_bool_to_str(i1)",
	"tml_vec_new":        "declare ptr @tml_vec_new(i64)",
	"tml_vec_push":       "declare void @tml_vec_push(ptr, ptr)",
	"tml_vec_get":        "declare ptr @tml_vec_get(ptr, i64)",
	"tml_vec_len":        "declare i64 @tml_vec_len(ptr)",
	"tml_map_new":        "declare ptr @tml_map_new()",
	"tml_map_insert":     "declare void @tml_map_insert(ptr, ptr, ptr)",
	"tml_map_get":        "declare ptr @tml_map_get(ptr, ptr)",
	"tml_cover_func":     "declare void @tml_cover_func(i32)",
	"tml_cover_line":     "declare void @tml_cover_line(i32)",
	"tml_cover_branch":   "declare void @tml_cover_branch(i32, i1)",
	"llvm.stacksave":     "declare ptr @llvm.stacksave()",
	"llvm.stackrestore":  "declare void @llvm.stackrestore(ptr)",
	"llvm.memmove.p0.p0.i64": "declare void @llvm.memmove.p0.p0.i64(ptr, ptr, i64, i1)",
	"llvm.memset.p0.i64":     "declare void @llvm.memset.p0.i64(ptr, i8, i64, i1)",
	"tml_spin_lock":          "declare ptr @tml_spin_lock(...)",
	"tml_spin_unlock":        "declare ptr @tml_spin_unlock(...)",
	"tml_spin_trylock":       "declare ptr @tml_spin_trylock(...)",
	"tml_thread_spawn":       "declare ptr @tml_thread_spawn(...)",
	"tml_thread_join":        "declare ptr @tml_thread_join(...)",
	"tml_thread_yield":       "declare ptr @tml_thread_yield(...)",
	"tml_thread_sleep":       "declare ptr @tml_thread_sleep(...)",
	"tml_thread_id":          "declare ptr @tml_thread_id(...)",
	"tml_channel_create":     "declare ptr @tml_channel_create(...)",
	"tml_channel_send":       "declare ptr @tml_channel_send(...)",
	"tml_channel_recv":       "declare ptr @tml_channel_recv(...)",
	"tml_channel_try_send":   "declare ptr @tml_channel_try_send(...)",
	"tml_channel_try_recv":   "declare ptr @tml_channel_try_recv(...)",
	"tml_channel_close":      "declare ptr @tml_channel_close(...)",
	"tml_channel_destroy":    "declare ptr @tml_channel_destroy(...)",
	"tml_channel_len":        "declare ptr @tml_channel_len(...)",
	"tml_mutex_create":       "declare ptr @tml_mutex_create(...)",
	"tml_mutex_lock":         "declare ptr @tml_mutex_lock(...)",
	"tml_mutex_unlock":       "declare ptr @tml_mutex_unlock(...)",
	"tml_mutex_try_lock":     "declare ptr @tml_mutex_try_lock(...)",
	"tml_mutex_destroy":      "declare ptr @tml_mutex_destroy(...)",
	"tml_waitgroup_create":   "declare ptr @tml_waitgroup_create(...)",
	"tml_waitgroup_add":      "declare ptr @tml_waitgroup_add(...)",
	"tml_waitgroup_done":     "declare ptr @tml_waitgroup_done(...)",
	"tml_waitgroup_wait":     "declare ptr @tml_waitgroup_wait(...)",
	"tml_waitgroup_destroy":  "declare ptr @tml_waitgroup_destroy(...)",
}
